// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/studybot/config"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	materialFlag := &cli.StringFlag{
		Name:    "material",
		Aliases: []string{"m"},
		Usage:   "Material to use (defaults to the only built material)",
	}

	return &cli.App{
		Name:  "studybot",
		Usage: "Study assistant that answers questions and quizzes you on your PDFs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the config file",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Directory holding the material store and index snapshots",
			},
			&cli.StringFlag{
				Name:    "student",
				Aliases: []string{"s"},
				Usage:   "Student whose questions and quizzes are logged",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Environment files to load",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Extract, chunk, embed and index one or more PDFs",
				ArgsUsage: "<pdf>...",
				Action:    buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Material name when building a single PDF (defaults to the file name)",
					},
				},
			},
			{
				Name:   "materials",
				Usage:  "List built materials",
				Action: materialsCommand,
			},
			{
				Name:      "delete",
				Usage:     "Delete a material and its index",
				ArgsUsage: "<name>",
				Action:    deleteCommand,
			},
			{
				Name:      "ask",
				Usage:     "Answer a question with a summarized, refined answer",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					materialFlag,
					&cli.IntFlag{Name: "k-chunks", Usage: "Chunks searched in the first stage"},
					&cli.IntFlag{Name: "k-sentences", Usage: "Sentences used as context"},
				},
			},
			{
				Name:      "answer",
				Usage:     "Answer a question directly from retrieved sentences",
				ArgsUsage: "<question>",
				Action:    answerCommand,
				Flags: []cli.Flag{
					materialFlag,
					&cli.IntFlag{Name: "top-k", Usage: "Chunks searched in the first stage"},
				},
			},
			{
				Name:      "quiz",
				Usage:     "Generate a multiple-choice and a short question on a topic",
				ArgsUsage: "<topic>",
				Action:    quizCommand,
				Flags: []cli.Flag{
					materialFlag,
					&cli.IntFlag{Name: "top-k", Usage: "Chunks searched for quiz context"},
					&cli.StringFlag{
						Name:  "answer",
						Usage: "MCQ answer to grade; prompted for when empty",
					},
				},
			},
			{
				Name:   "progress",
				Usage:  "Show the student's progress",
				Action: progressCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "history",
						Usage: "Also list the N most recent questions",
					},
				},
			},
			{
				Name:      "reindex",
				Usage:     "Re-embed a material's chunks with the configured embedding model",
				ArgsUsage: "<name>",
				Action:    reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (defaults to the configured model)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "normalize",
						Usage: "Normalize vectors to unit length",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Start an interactive study session",
				Action: chatCommand,
				Flags: []cli.Flag{
					materialFlag,
					&cli.StringFlag{
						Name:  "topic",
						Usage: "Default quiz topic (defaults to the material name)",
					},
				},
			},
		},
	}
}

// setup loads environment files and configuration, then configures logging.
func setup(c *cli.Context) error {
	if err := config.LoadEnv(c.StringSlice("env-file")...); err != nil {
		return err
	}

	var (
		cfg *config.AppConfig
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if student := c.String("student"); student != "" {
		cfg.Student = student
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[configKey] = cfg

	return setupLogger(cfg.LogLevel)
}

func appConfig(c *cli.Context) *config.AppConfig {
	if cfg, ok := c.App.Metadata[configKey].(*config.AppConfig); ok {
		return cfg
	}
	return config.Default()
}

func setupLogger(levelStr string) error {
	levelStr = strings.ToLower(levelStr)

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

package search

import (
	"github.com/poiesic/studybot/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterChunkSearch(chunks []core.ChunkMatch)
	AfterSentenceSplit(sentences []string)
	AfterSentenceSearch(sentences []core.SentenceMatch)
	Finish(results []core.SentenceMatch)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterChunkSearch(_ []core.ChunkMatch)      {}
func (n *noopMonitor) AfterSentenceSplit(_ []string)             {}
func (n *noopMonitor) AfterSentenceSearch(_ []core.SentenceMatch) {}
func (n *noopMonitor) Finish(_ []core.SentenceMatch)             {}

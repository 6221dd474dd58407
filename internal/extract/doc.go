// Package extract turns downloaded pages into entity records.
//
// Search-result pages go through Candidates (or ExtractCandidates), which
// reads the click-tracking payload of every hit in document order.
// Repository pages go through ExtractDetail, which reads the owner and the
// language breakdown. Markup that does not have the expected shape is an
// *ExtractError; nothing is skipped silently.
package extract

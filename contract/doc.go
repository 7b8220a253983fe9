// Package contract composes the contract summary card and the single-page
// summary document for one contract record.
//
// The card is a view model (BuildCard) that transports render through a
// template adapter. The summary is a fixed sequence of positioned text lines
// (BuildSummary) written through a Document, which is supplied by an adapter
// such as adapters/pdf. Records are immutable inputs; nothing in this package
// mutates them.
package contract

// Package models defines domain entities for the radio playlist service.
//
// The package contains two categories of types:
//
// 1. Pipeline values passed between the scraping, normalization and
// resolution stages:
//   - [Program] : a tracked radio show and the source kind selecting its adapter
//   - [Song] : a raw (title, artist) pair in broadcast order
//   - [Query] : normalized search terms derived lazily from a Song
//   - [Resolution] : the outcome of a tiered catalog lookup
//
// 2. Persistent records backed by SQLite:
//   - [CachedSongs] : the per-(program, date) song cache entry
//   - [PlaylistRecord] : a generated playlist with resolution statistics
package models

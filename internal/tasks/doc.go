// package tasks implements the daily playlist build pipeline.
//
// The core abstraction is Engine, which orchestrates one broadcast day per
// configured program: fetch the song listing (through the cache), resolve
// each song against the catalog, and mirror the listing into a playlist.
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI and server layers.
package tasks

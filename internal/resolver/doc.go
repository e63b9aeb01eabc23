// Package resolver maps NFO records to Douban subject ids and fetches their
// cast and crew.
//
// Resolution follows a fixed ladder: a single raw suggestion wins outright,
// then candidates are filtered by type, then scored by title similarity among
// those released in the record's year. When the title yields nothing the IMDb
// id is tried after a courtesy pause. Remote failures never escape; they are
// logged and reduce to an empty result so a run always continues.
package resolver

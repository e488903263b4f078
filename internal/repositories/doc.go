// Package repositories implements the record store on SQLite.
//
// [Store] satisfies [store.Store] with the same semantics as the in-memory backend, so callers can
// switch with the database.driver setting. Schema comes from the migrations embedded in the shared package.
//
// Insertion order is kept with sequence numbers: [NextSequence] atomically increments a per-table counter
// inside the inserting transaction, and listings order by that column. List-valued fields (playlist track
// ids, recommendations, preference lists) are stored as JSON text.
//
// Search and trending reuse the helpers from the models package over the ordered track list, because
// SQLite's LIKE only folds ASCII case and the catalog is mostly Turkish.
package repositories

/*
Package output hands finished entities to storage backends.

A Dispatcher receives add, modify and delete events for nodes, ways and
relations and delivers each one, in order, to every configured Backend.
Way events carry their node list as a georec.RefList view; the view is only
valid for the duration of the call, so backends copy whatever they keep.

Two backends are provided: KVBackend stores msgpack-encoded rows in Bolt (or
in memory, for tests), SQLiteBackend writes rows to SQLite tables. Both lay
out their data the same way, controlled by Options:

  - one table per geometry class: <prefix>_point, <prefix>_line,
    <prefix>_polygon, <prefix>_rel;
  - tags listed in Options.Columns get their own column;
  - the remaining tags (HstoreNorm) or all tags (HstoreAll) go into a single
    key-value column, and tags matching an Options.HstoreColumns prefix go
    into a key-value column of their own;
  - coordinates are stored as integers scaled by Options.Scale per degree.
*/
package output

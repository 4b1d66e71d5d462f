package output

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/andreyvit/georec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	sb, err := OpenSQLite(filepath.Join(t.TempDir(), "out.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sb.Close() })
	return sb
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+quoteIdent(table)).Scan(&n))
	return n
}

func TestSQLite_rows(t *testing.T) {
	ctx := context.Background()
	sb := openTestSQLite(t)
	opt := testOptions()
	opt.Columns = []string{"name"}
	opt.Hstore = HstoreNorm
	opt.HstoreColumns = []string{"name:"}
	d := newTestDispatcher(t, opt, sb)

	tags := TagsFromMap(map[string]string{"name": "Tower", "name:fr": "Tour", "man_made": "tower"})
	require.NoError(t, d.NodeAdd(ctx, 1, georec.LocationFromDegrees(1.5, 2.25), tags))
	require.NoError(t, d.WayAdd(ctx, 2, wayNodes(t, georec.KindWayNodes, []int64{5, 6}, 1, 1, 2, 2), nil))
	require.NoError(t, d.RelationAdd(ctx, 3, []Member{{Type: Way, Ref: 2, Role: "outer"}}, nil))
	require.NoError(t, d.Stop(ctx))

	db := sb.DB()
	var (
		geom      string
		name      sql.NullString
		hstore    sql.NullString
		nameExtra sql.NullString
	)
	err := db.QueryRow(`SELECT geom, name, tags, "name:" FROM planet_osm_point WHERE osm_id = 1`).Scan(&geom, &name, &hstore, &nameExtra)
	require.NoError(t, err)
	assert.Equal(t, "[150,225]", geom)
	assert.Equal(t, "Tower", name.String)
	assert.JSONEq(t, `{"man_made": "tower", "name:fr": "Tour"}`, hstore.String)
	assert.JSONEq(t, `{"name:fr": "Tour"}`, nameExtra.String)

	var nodes string
	var wayName sql.NullString
	err = db.QueryRow(`SELECT nodes, geom, name FROM planet_osm_line WHERE osm_id = 2`).Scan(&nodes, &geom, &wayName)
	require.NoError(t, err)
	assert.Equal(t, "[5,6]", nodes)
	assert.Equal(t, "[100,100,200,200]", geom)
	assert.False(t, wayName.Valid)

	var members string
	require.NoError(t, db.QueryRow(`SELECT members FROM planet_osm_rel WHERE osm_id = 3`).Scan(&members))
	assert.JSONEq(t, `[{"type": "way", "ref": 2, "role": "outer"}]`, members)

	var idx int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'planet_osm_point_osm_id'`).Scan(&idx))
	assert.Equal(t, 1, idx)
}

func TestSQLite_modifyAndDelete(t *testing.T) {
	ctx := context.Background()
	sb := openTestSQLite(t)
	d := newTestDispatcher(t, testOptions(), sb)

	ring := wayNodes(t, georec.KindWayNodes, []int64{1, 2, 3, 1})
	require.NoError(t, d.WayAdd(ctx, 10, ring, TagsFromMap(map[string]string{"landuse": "grass"})))
	require.NoError(t, d.Flush(ctx))
	assert.Equal(t, 1, countRows(t, sb.DB(), "planet_osm_polygon"))

	require.NoError(t, d.WayModify(ctx, 10, ring, TagsFromMap(map[string]string{"barrier": "fence"})))
	require.NoError(t, d.NodeAdd(ctx, 4, georec.Location{}, nil))
	require.NoError(t, d.NodeDelete(ctx, 4))
	require.NoError(t, d.Stop(ctx))

	db := sb.DB()
	assert.Equal(t, 0, countRows(t, db, "planet_osm_polygon"))
	assert.Equal(t, 1, countRows(t, db, "planet_osm_line"))
	assert.Equal(t, 0, countRows(t, db, "planet_osm_point"))
}

func TestSQLite_append(t *testing.T) {
	ctx := context.Background()
	sb := openTestSQLite(t)
	opt := testOptions()

	d := newTestDispatcher(t, opt, sb)
	require.NoError(t, d.NodeAdd(ctx, 1, georec.Location{}, nil))
	require.NoError(t, d.Stop(ctx))

	opt.Append = true
	d = newTestDispatcher(t, opt, sb)
	require.NoError(t, d.NodeAdd(ctx, 2, georec.Location{}, nil))
	require.NoError(t, d.Stop(ctx))
	assert.Equal(t, 2, countRows(t, sb.DB(), "planet_osm_point"))

	opt.Append = false
	d = newTestDispatcher(t, opt, sb)
	require.NoError(t, d.Stop(ctx))
	assert.Equal(t, 0, countRows(t, sb.DB(), "planet_osm_point"))
}

func TestSQLite_notStarted(t *testing.T) {
	sb := openTestSQLite(t)
	ctx := context.Background()
	assert.ErrorIs(t, sb.Handle(ctx, &Event{Op: OpDelete, Type: Node, ID: 1}), ErrNotStarted)
	assert.ErrorIs(t, sb.Flush(ctx), ErrNotStarted)
	assert.ErrorIs(t, sb.Stop(ctx), ErrNotStarted)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"name:"`, quoteIdent("name:"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

func TestSQLite_queriesBetweenFlushes(t *testing.T) {
	ctx := context.Background()
	sb := openTestSQLite(t)
	d := newTestDispatcher(t, testOptions(), sb)

	require.NoError(t, d.NodeAdd(ctx, 1, georec.Location{}, nil))
	require.NoError(t, d.Flush(ctx))
	require.NoError(t, d.Flush(ctx))

	// the connection must not be held by an idle transaction
	qctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var n int
	require.NoError(t, sb.DB().QueryRowContext(qctx, `SELECT COUNT(*) FROM planet_osm_point`).Scan(&n))
	assert.Equal(t, 1, n)

	require.NoError(t, d.NodeAdd(ctx, 2, georec.Location{}, nil))
	require.NoError(t, d.Stop(ctx))
	assert.Equal(t, 2, countRows(t, sb.DB(), "planet_osm_point"))
	assert.ErrorIs(t, sb.Stop(ctx), ErrNotStarted)
}

package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/bigtable/bttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/deppfellow/oddstable/internal/cli"
	"github.com/deppfellow/oddstable/internal/errs"
)

const sample = `oddSeq,created_ts,market,game_state,score,game_time,vendor,k,h,a,d,ov,ud
,2020-07-28T03:15:57+00:00,1x2,prematch,0-0,-,betradar,,1.5,2.1,3.0,,
0,2020-07-28T03:16:00+00:00,ou,1h,0-0,12,betradar,2.5,,,,1.8,2.0
0,yesterday,ou,1h,0-0,12,betradar,2.5,,,,1.8,2.0
`

type harness struct {
	addr string
	dir  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, err := bttest.NewServer("localhost:0")
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "odds.csv"), []byte(sample), 0o600))
	return &harness{addr: srv.Addr, dir: dir}
}

// run executes one command against the in-memory server with a fresh
// connection, as a separate process would.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	rc := cli.NewRootCommand(strings.NewReader(""), &stdout, &stderr,
		cli.WithClientOptions(func() ([]option.ClientOption, error) {
			conn, err := grpc.NewClient(h.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return nil, err
			}
			return []option.ClientOption{option.WithGRPCConn(conn)}, nil
		}),
	)

	base := []string{"--project", "test-project", "--instance", "test-instance", "--log-level", "error", "--log-format", "json"}
	rc.SetArgs(append(args, base...))

	err := rc.ExecuteContext(context.Background())
	return stdout.String(), err
}

func lines(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var docs []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &doc), line)
		docs = append(docs, doc)
	}
	return docs
}

func TestSchema(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "schema")
	require.NoError(t, err)
	var change map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &change))
	assert.Equal(t, true, change["table_created"])
	assert.ElementsMatch(t, []interface{}{"info", "odds"}, change["families_created"])

	out, err = h.run(t, "schema")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &change))
	assert.Equal(t, false, change["table_created"])
}

func TestWrite_NeedsTable(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "write", filepath.Join(h.dir, "odds.csv"),
		"--sport-id", "1", "--league-id", "213", "--match-id", "7654321")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrStoreUnavailable)
}

func TestWrite_RequiresBatch(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "write", filepath.Join(h.dir, "odds.csv"),
		"--auto-create", "--sport-id", "1", "--league-id", "213")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestWriteGetScan(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "write", filepath.Join(h.dir, "odds.csv"),
		"--auto-create", "--sport-id", "1", "--league-id", "213", "--match-id", "7654321")
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.EqualValues(t, 3, report["read"])
	assert.EqualValues(t, 2, report["written"])
	assert.EqualValues(t, 1, report["failed"])

	out, err = h.run(t, "get",
		"--rowkey", "1:213:7654321:1x2:0:pre:betradar:1595906157",
		"--rowkey", "1:213:7654321:1x2:0:pre:betradar:1",
		"--rowkey", "not-a-key")
	require.NoError(t, err)
	docs := lines(t, out)
	require.Len(t, docs, 1)
	assert.Equal(t, "1x2", docs[0]["odds_kind"])
	assert.Equal(t, map[string]interface{}{"h": "1.5", "a": "2.1", "d": "3.0"}, docs[0]["odds"])
	assert.Equal(t, map[string]interface{}{"s": "0-0", "per": "prematch", "et": "-"}, docs[0]["info"])

	out, err = h.run(t, "scan", "--prefix", "1:213:7654321:")
	require.NoError(t, err)
	docs = lines(t, out)
	require.Len(t, docs, 2)
	assert.Equal(t, "1:213:7654321:1x2:0:pre:betradar:1595906157", docs[0]["rowkey"])
	assert.Equal(t, "1:213:7654321:ou:0:1h:betradar:1595906160", docs[1]["rowkey"])

	out, err = h.run(t, "scan", "--start-rowkey", "1:213:7654321:ou:", "--limit", "5")
	require.NoError(t, err)
	require.Len(t, lines(t, out), 1)
}

func TestGet_RequiresKey(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "get")
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestScan_RejectsPrefixWithStop(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "scan", "--prefix", "1:", "--stop-rowkey", "1:2")
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestRowKeySeparator(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "write", filepath.Join(h.dir, "odds.csv"), "--rowkey-sep", "#",
		"--auto-create", "--sport-id", "1", "--league-id", "213", "--match-id", "7654321")
	require.NoError(t, err)

	out, err := h.run(t, "get", "--rowkey-sep", "#", "--rowkey", "1#213#7654321#ou#0#1h#betradar#1595906160")
	require.NoError(t, err)
	docs := lines(t, out)
	require.Len(t, docs, 1)
	assert.Equal(t, "ou", docs[0]["mkt"])
	assert.Equal(t, "1h", docs[0]["per"])
}

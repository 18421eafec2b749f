package bletext

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSONL = `{"id": 16, "name": "BLE_GAP_EVT_CONNECTED", "conn_handle": 0, "role": "BLE_GAP_ROLE_CENTRAL", "peer_addr": {"address": "aa:bb:cc:dd:ee:ff"}}
{"id": 29, "name": "BLE_GAP_EVT_ADV_REPORT", "adv_type": "BLE_GAP_ADV_TYPE_ADV_IND", "rssi": -40, "data": {"BLE_GAP_AD_TYPE_FLAGS": ["BLE_GAP_ADV_FLAG_LE_GENERAL_DISC_MODE"], "raw": {"type": "Buffer", "data": [2, 1]}}}
{"name": "BLE_GAP_EVT_TIMEOUT"}
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestToText(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"id": 29, "name": "BLE_GAP_EVT_ADV_REPORT", "adv_type": "BLE_GAP_ADV_TYPE_ADV_IND", "rssi": -40,
		"data": {"BLE_GAP_AD_TYPE_FLAGS": ["BLE_GAP_ADV_FLAG_LE_GENERAL_DISC_MODE"], "raw": {"type": "Buffer", "data": [2, 1]}}}`))
	require.NoError(t, err)

	assert.Equal(t,
		"GAP_EVT_ADV_REPORT/ADV_IND advType:advInd rssi:-40 gap:[adTypeFlags:[leGeneralDiscMode]] raw:[0201]",
		ToText(ev))
}

func TestToTextInvalid(t *testing.T) {
	assert.Empty(t, ToText(nil))
	assert.Empty(t, ToText(NewEvent().Set("name", "BLE_GAP_EVT_TIMEOUT")))

	var logs bytes.Buffer
	_, err := Text(EventFromMap(map[string]any{"id": 1}), slog.New(slog.NewTextHandler(&logs, nil)))
	assert.ErrorIs(t, err, ErrInvalidEvent)
	assert.Contains(t, logs.String(), "unknown event received")
}

func TestPeerAddress(t *testing.T) {
	ev := EventFromMap(map[string]any{
		"id":        16,
		"name":      "BLE_GAP_EVT_CONNECTED",
		"role":      "BLE_GAP_ROLE_PERIPH",
		"peer_addr": map[string]any{"address": "11:22:33:44:55:66"},
	})
	assert.Equal(t, "central 11:22:33:44:55:66", PeerAddress(ev))
	assert.Empty(t, PeerAddress(NewEvent()))
}

func TestProcessBytes(t *testing.T) {
	out, res, err := ProcessBytes([]byte(sampleJSONL), WithLogger(discardLogger()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "GAP_EVT_CONNECTED connHandle:0 role:central peerAddr:[address:aa:bb:cc:dd:ee:ff]", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "GAP_EVT_ADV_REPORT/ADV_IND "))

	assert.Equal(t, int64(len(sampleJSONL)), res.InputBytes)
	assert.Equal(t, int64(len(out)), res.OutputBytes)
	assert.Equal(t, int64(2), res.OutputLines)
	assert.Equal(t, 3, res.EventCount)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Filtered)
}

func TestProcessBytesOptions(t *testing.T) {
	out, res, err := ProcessBytes([]byte(sampleJSONL),
		WithLogger(discardLogger()),
		WithPeerPrefix(),
		WithExclude("GAP_EVT_ADV_REPORT"),
	)
	require.NoError(t, err)
	assert.Equal(t,
		"peripheral AA:BB:CC:DD:EE:FF: GAP_EVT_CONNECTED connHandle:0 role:central peerAddr:[address:aa:bb:cc:dd:ee:ff]\n",
		string(out))
	assert.Equal(t, 1, res.Filtered)
	assert.Equal(t, 1, res.Skipped)
}

func TestProcessBytesStrict(t *testing.T) {
	_, _, err := ProcessBytes([]byte(sampleJSONL), WithLogger(discardLogger()), WithStrict())
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestProcessBytesBadInput(t *testing.T) {
	_, _, err := ProcessBytes([]byte("not json"), WithLogger(discardLogger()))
	assert.ErrorContains(t, err, "parsing input")
}

func TestProcess(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	res, err := Process(strings.NewReader(sampleJSONL), &out, WithLogger(logger), WithInclude("GAP_EVT_ADV"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	assert.Contains(t, logs.String(), "events formatted")
	assert.Contains(t, logs.String(), "written=1")
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "events.jsonl")
	outPath := filepath.Join(dir, "events.log")
	require.NoError(t, os.WriteFile(in, []byte(sampleJSONL), 0600))

	res, err := ProcessFile(in, outPath, WithLogger(discardLogger()))
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), res.OutputBytes)
	assert.Equal(t, 2, res.Written)

	_, err = ProcessFile(filepath.Join(dir, "missing.jsonl"), outPath)
	assert.ErrorContains(t, err, "reading input")
}

func TestProcessBytesRedact(t *testing.T) {
	input := `{"id": 28, "name": "BLE_GAP_EVT_SEC_INFO_REQUEST", "enc_info": {"ltk": [1, 2, 3]}}`

	out, _, err := ProcessBytes([]byte(input), WithLogger(discardLogger()), WithRedact())
	require.NoError(t, err)
	assert.Equal(t, "GAP_EVT_SEC_INFO_REQUEST encInfo:[ltk:redacted]\n", string(out))
}

func TestToTextReusesFormatter(t *testing.T) {
	ev := EventFromMap(map[string]any{"id": 1, "name": "BLE_GAP_EVT_CONNECTED", "conn_handle": 0})

	shared := testing.AllocsPerRun(50, func() { _, _ = defaultFormatter.Text(ev) })
	viaToText := testing.AllocsPerRun(50, func() { _ = ToText(ev) })
	assert.Equal(t, shared, viaToText)
}

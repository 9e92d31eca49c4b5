package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"centerhub/internal/center"
	"centerhub/internal/config"
	"centerhub/internal/filter"
)

const testSheet = "Center Name,Upazila,Union,Total Voter,Risk Status\n" +
	"Alpha School,Kasba,Mehari,1200,High\n" +
	"Beta College,Kasba,Badair,2000,Normal\n" +
	"Gamma Madrasa,Akhaura,Dharkhar,3000,High\n"

// sheetServer serves testSheet as the CSV export of spreadsheet "abc".
func sheetServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/d/abc/export" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(testSheet))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, srv *httptest.Server, backend string) *config.Config {
	t.Helper()
	return &config.Config{
		SpreadsheetID:   "abc",
		SheetBaseURL:    srv.URL + "/d/",
		HTTPTimeout:     5 * time.Second,
		SettingsBackend: backend,
		SettingsPath:    filepath.Join(t.TempDir(), "settings."+backend),
		NoticeDuration:  time.Second,
	}
}

func TestAppLoadsSheet(t *testing.T) {
	srv := sheetServer(t)

	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			a, err := newApp(testConfig(t, srv, backend), zap.NewNop())
			require.NoError(t, err)
			defer a.Close()

			require.NoError(t, a.load(context.Background()))
			assert.Len(t, a.dash.Centers(), 3)
			assert.Equal(t, "healthy", a.monitor.GetStatus().Status)

			_, err = a.dash.UpdateSource("https://docs.google.com/spreadsheets/d/zzz/edit")
			require.NoError(t, err)
			assert.Error(t, a.load(context.Background()))
			assert.Len(t, a.dash.Centers(), 3, "failed load keeps records")
			assert.Equal(t, "degraded", a.monitor.GetStatus().Status)
		})
	}
}

func TestAppRejectsBadRulesPath(t *testing.T) {
	cfg := testConfig(t, sheetServer(t), config.BackendFile)
	cfg.HeaderRulesPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := newApp(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestFilterFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	ff := addFilterFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--upazila", "Kasba", "--voters", "lt1500", "-s", "alpha"}))

	sel, err := ff.selection()
	require.NoError(t, err)
	assert.Equal(t, "Kasba", sel.Get(filter.Upazila))
	assert.Equal(t, string(filter.Below1500), sel.Get(filter.TotalVoters))
	assert.Equal(t, filter.All, sel.Get(filter.RiskStatus))
	assert.Equal(t, "alpha", sel.Search)

	require.NoError(t, cmd.Flags().Set("voters", "plenty"))
	_, err = ff.selection()
	assert.Error(t, err)
}

func TestPrintRecordsAndTabs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRecords(&buf, []center.Record{
		{SerialNo: "1", CenterName: "Alpha School", Upazila: "Kasba", Union: "Mehari",
			RiskStatus: "High", TotalVoters: "1200", OfficerName: "Rahim", Phone: "017"},
	}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "SERIAL"))
	assert.Contains(t, out, "Alpha School")
	assert.Contains(t, out, "1 centers")

	buf.Reset()
	require.NoError(t, printTabs(&buf, []filter.Tab{{Name: filter.All, Count: 3}, {Name: "Kasba", Count: 2}}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Kasba"))
	assert.True(t, strings.HasSuffix(lines[1], "2"))
}

func TestListCommand(t *testing.T) {
	srv := sheetServer(t)
	dir := t.TempDir()
	t.Setenv("SPREADSHEET_ID", "abc")
	t.Setenv("SHEET_BASE_URL", srv.URL+"/d/")
	t.Setenv("SETTINGS_BACKEND", config.BackendFile)
	t.Setenv("SETTINGS_PATH", filepath.Join(dir, "settings.csv"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"list", "--risk", "High", "--json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	var records []center.Record
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Alpha School", records[0].CenterName)
	assert.Equal(t, "Gamma Madrasa", records[1].CenterName)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/kernstyle/engine/kerning"
	"github.com/npillmayer/kernstyle/engine/present"
	"github.com/npillmayer/kernstyle/engine/present/htmlsurface"
	"github.com/npillmayer/kernstyle/internal/fonttest"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewHandler(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.cli")
	defer teardown()
	//
	b, err := fonttest.KernedFont(fonttest.Pair{Left: 'T', Right: 'o', Value: -120})
	require.NoError(t, err)
	doc := htmlsurface.New(fontregistry.NewRegistry())
	ctrl := present.NewController(present.DefaultConfig(), doc, doc)
	settled := make(chan present.Snapshot, 8)
	ctrl.Subscribe(doc.Update)
	ctrl.Subscribe(func(snap present.Snapshot) {
		if snap.Table != nil {
			settled <- snap
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctrl.Run(ctx)
	srv := httptest.NewServer(previewHandler(doc, ctrl))
	defer srv.Close()
	//
	resp, err := http.Get(srv.URL + "/kerning.css")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, err = http.Post(srv.URL+"/font", "font/ttf", bytes.NewReader(b))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	select {
	case <-settled:
	case <-time.After(10 * time.Second):
		t.Fatalf("timeout waiting for kerning controller")
	}
	resp, err = http.PostForm(srv.URL+"/text", url.Values{"text": {"Toast"}})
	require.NoError(t, err)
	resp.Body.Close()
	//
	resp, err = http.Get(srv.URL + "/kerning.json")
	require.NoError(t, err)
	var table kerning.Table
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&table))
	resp.Body.Close()
	k, ok := table.KerningFor("T", "o")
	assert.True(t, ok)
	assert.InDelta(t, -120.0/2048.0, k, 1e-9)
	//
	resp, err = http.Get(srv.URL + "/")
	require.NoError(t, err)
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(page), `<span class="T">T</span><span class="o">o</span>`)
	assert.Contains(t, string(page), "@font-face")
	assert.Contains(t, string(page), ctrl.Snapshot().CSS)
	//
	resp, err = http.Get(srv.URL + "/text")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWriteOutput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "kernstyle.cli")
	defer teardown()
	//
	table := &kerning.Table{
		FontName: "Test",
		Unit:     kerning.EmRelative,
		Groups: []kerning.KerningSpec{{
			Chars:    []string{"A", "T"},
			Kernings: []kerning.PairKerning{{Kerning: -0.05, Chars: []string{"V"}}},
		}},
	}
	cfg := present.DefaultConfig()
	assert.Equal(t, ".kern_Test {\n:is(.A,.T) + :is(.V) { margin-left: -0.05em; }}", formatCSS(cfg, table, -1))
	cfg.ClassName = "mine"
	assert.True(t, strings.HasPrefix(formatCSS(cfg, table, 1), ".mine {"))
	out := t.TempDir() + "/kerning.json"
	require.NoError(t, writeOutput(out, table, cfg, true, -1))
}

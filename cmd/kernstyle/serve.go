package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/kernstyle/engine/present"
	"github.com/npillmayer/kernstyle/engine/present/htmlsurface"
	"github.com/pterm/pterm"
)

const maxFontSize = 32 << 20

const sampleText = "AVATAR Type Wave: To Yaw, LT Vo"

// serve runs a preview server until ctx is done.
func serve(ctx context.Context, addr string, cfg present.Config, binary []byte) error {
	doc := htmlsurface.New(fontregistry.GlobalRegistry())
	ctrl := present.NewController(cfg, doc, doc)
	ctrl.Subscribe(doc.Update)
	ctrl.Subscribe(func(snap present.Snapshot) {
		switch {
		case snap.Err != nil:
			pterm.Error.Printfln("font #%d: %v", snap.Generation, snap.Err)
		case snap.Table != nil:
			pterm.Success.Printfln("font #%d: %d kerning groups, scope class %s",
				snap.Generation, snap.Table.Len(), snap.ClassName)
		}
	})
	go ctrl.Run(ctx)
	doc.SetText(sampleText)
	if err := ctrl.FontChanged(binary); err != nil {
		return err
	}
	srv := &http.Server{Addr: addr, Handler: previewHandler(doc, ctrl)}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// previewHandler serves the document and accepts changes of font, text and
// scope class.
//
//	GET  /              the document
//	POST /font          font binary as request body
//	DELETE /font        remove the font
//	POST /text          form value 'text'
//	POST /class         form value 'class'
//	GET  /kerning.css   the current style sheet
//	GET  /kerning.json  the current kerning table
func previewHandler(doc *htmlsurface.Document, ctrl *present.Controller) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := doc.Render(w); err != nil {
			tracer().Errorf("cannot render preview: %v", err)
		}
	})
	mux.HandleFunc("/font", func(w http.ResponseWriter, r *http.Request) {
		var err error
		switch r.Method {
		case http.MethodPost:
			var b []byte
			b, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxFontSize))
			if err == nil {
				err = ctrl.FontChanged(b)
			}
		case http.MethodDelete:
			err = ctrl.FontChanged(nil)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		respond(w, err)
	})
	mux.HandleFunc("/text", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		doc.SetText(r.FormValue("text"))
		respond(w, nil)
	})
	mux.HandleFunc("/class", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		respond(w, ctrl.ClassNameChanged(r.FormValue("class")))
	})
	mux.HandleFunc("/kerning.css", func(w http.ResponseWriter, r *http.Request) {
		snap := ctrl.Snapshot()
		if snap.Table == nil {
			http.Error(w, "no kerning available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		io.WriteString(w, snap.CSS)
	})
	mux.HandleFunc("/kerning.json", func(w http.ResponseWriter, r *http.Request) {
		snap := ctrl.Snapshot()
		if snap.Table == nil {
			http.Error(w, "no kerning available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap.Table)
	})
	return mux
}

func respond(w http.ResponseWriter, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Command mirror-server serves local XML files as a stand-in for the BGG XML
// API: GET /collection?username=NAME reads DIR/collection/NAME.xml (falling
// back to DIR/collection.xml) and GET /thing?id=... reads DIR/thing.xml.
package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	dir := flag.String("dir", "internal/bgg/testdata", "directory with collection.xml and thing.xml")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	http.HandleFunc("/collection", func(w http.ResponseWriter, r *http.Request) {
		user := filepath.Base(strings.TrimSpace(r.URL.Query().Get("username")))
		paths := []string{filepath.Join(*dir, "collection.xml")}
		if user != "" && user != "." && user != "/" {
			paths = append([]string{filepath.Join(*dir, "collection", user+".xml")}, paths...)
		}
		serveFirst(w, paths)
	})
	http.HandleFunc("/thing", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "" {
			http.Error(w, "id required", http.StatusBadRequest)
			return
		}
		serveFirst(w, []string{filepath.Join(*dir, "thing.xml")})
	})

	logger.Info("mirror-server listening", zap.String("addr", *addr), zap.String("dir", *dir))
	if err := http.ListenAndServe(*addr, nil); err != nil {
		logger.Fatal("mirror-server stopped", zap.Error(err))
	}
}

func serveFirst(w http.ResponseWriter, paths []string) {
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}
	// BGG answers unknown queries with an empty item list
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?><items totalitems="0"></items>`))
}

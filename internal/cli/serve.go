package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"lawrag/internal/api"
	"lawrag/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query API",
	Long: `Serve semantic search and RAG context assembly over HTTP for the
judgment generation pipeline. Binds to localhost by default.

Endpoints:
  POST /search    semantic search
  POST /context   assembled RAG context
  GET  /health    health check
  GET  /stats     collection statistics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	retriever := usecase.NewRetriever(emb, st, cfg.Collection.Name)
	admin := usecase.NewAdmin(st)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := api.NewServer(retriever, admin, cfg.Collection.Name)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
	}

	fmt.Printf("Serving query API on http://%s (collection %s)\n", addr, cfg.Collection.Name)
	return httpServer.ListenAndServe()
}

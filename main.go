package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"novel_ai/chapter"
	"novel_ai/config"
	"novel_ai/engine"
	"novel_ai/generator"
	"novel_ai/handlers"
	"novel_ai/save"
	"novel_ai/storage"
	"novel_ai/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "novel_ai", cfg.OTelEndpoint)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	def, err := config.LoadProject(cfg.ProjectFile)
	if err != nil {
		log.Fatal(err)
	}
	for _, kind := range def.Catalog.Missing() {
		log.Printf("project %q has no %s epilogue", def.Project.Title, kind)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	gen := generator.NewGemini(generator.NewModel(client, cfg.Model), def.Project, generator.Options{
		Scenes: cfg.ScenesPerChapter,
	})
	orchestrator, err := chapter.New(store, gen, chapter.Options{
		ProjectID:       def.Project.ID,
		GenerateTimeout: cfg.GenerateTimeout,
		CacheByState:    cfg.CacheByState,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Println(orchestrator)

	saves, err := save.NewManager(store, def.Project.ID, nil)
	if err != nil {
		log.Fatal(err)
	}

	screen := &handlers.Screen{}
	session, err := engine.New(engine.Config{
		Project:   def.Project,
		Policy:    def.Policy,
		Catalog:   def.Catalog,
		Resolver:  orchestrator,
		Presenter: screen,
		Saver:     saves,
	})
	if err != nil {
		log.Fatal(err)
	}

	h := &handlers.Handler{
		Session: session,
		Saves:   saves,
		Screen:  screen,
		Title:   def.Project.Title,
	}

	mux := http.NewServeMux()
	h.Routes(mux)

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Listening on http://%s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

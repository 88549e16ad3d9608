package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	specialistx "supportmesh/agent/agents/specialist"
	contractx "supportmesh/agent/contract"
	llmx "supportmesh/agent/llm"
	routerx "supportmesh/agent/router"
	storex "supportmesh/agent/store"
	toolx "supportmesh/agent/tool"
	transportx "supportmesh/agent/transport"
	configx "supportmesh/pkg/config"
	_ "supportmesh/pkg/logger/autoload"
)

type AppConfig struct {
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
}

// demoQueries exercises every routing branch when no query is given on the
// command line.
var demoQueries = []string{
	"Get customer information for ID 5.",
	"I'm customer 3 and need help upgrading my account.",
	"Show me all active customers who have open tickets.",
	"My customer ID is 4. Update my email to new@email.com and show my ticket history.",
	"I've been charged twice, please refund immediately!",
}

func main() {
	ctx := context.Background()
	appCfg := configx.MustNew[AppConfig]("")

	backing, cleanup, err := newStore(*appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize backing store")
	}
	defer cleanup()

	gateway := toolx.NewGateway(backing)

	tr, err := newTransport(gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize transport")
	}

	r, err := routerx.New(tr, routerx.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("initialize router")
	}

	queries := demoQueries
	if args := os.Args[1:]; len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		queries = []string{strings.Join(args, " ")}
	}

	for _, query := range queries {
		answer, err := r.Handle(ctx, query)
		if err != nil {
			log.Error().Err(err).Str("query", query).Msg("query failed")
			continue
		}
		fmt.Printf("Query: %s\n%s\n\n", query, answer)
	}
}

func newStore(cfg AppConfig) (storex.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		log.Info().Msg("no POSTGRES_DSN set, using seeded in-memory store")
		return storex.NewSeededMemory(), func() {}, nil
	}
	pg, err := storex.NewPostgres(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	return pg, func() { _ = pg.Close() }, nil
}

// newTransport prefers remote specialist endpoints when configured and falls
// back to in-process specialists otherwise.
func newTransport(gateway *toolx.Gateway) (contractx.Transport, error) {
	httpCfg := configx.MustNew[transportx.HTTPConfig]("AGENT")
	if httpCfg.DataURL != "" && httpCfg.SupportURL != "" {
		log.Info().Str("data_url", httpCfg.DataURL).Str("support_url", httpCfg.SupportURL).Msg("using HTTP transport")
		return transportx.NewHTTP(*httpCfg), nil
	}

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	registry, err := specialistx.NewRegistry(*llmCfg, gateway)
	if err != nil {
		return nil, err
	}
	return transportx.NewInProcess(registry), nil
}

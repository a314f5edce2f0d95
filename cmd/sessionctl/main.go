// Command sessionctl inspects and overrides session entitlement in the
// configured store.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"promptagent/internal/domain"
	"promptagent/internal/entitlement"
	"promptagent/internal/infra"
	"promptagent/internal/sessionstore"
)

func main() {
	var (
		idFlag     string
		actionFlag string
	)
	flag.StringVar(&idFlag, "id", "", "session ID (value of the promptagent_session cookie)")
	flag.StringVar(&actionFlag, "action", "show", "action to apply (show, pro, free, reset, delete)")
	flag.Parse()

	_ = godotenv.Load()

	id := strings.TrimSpace(idFlag)
	action := strings.TrimSpace(strings.ToLower(actionFlag))
	if id == "" {
		exitWithError(errors.New("-id is required"))
	}

	cfg := infra.ReadConfig()
	if err := cfg.ValidateStore(); err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "sessionctl").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, closeStore, err := sessionstore.Open(ctx, cfg, logger)
	if err != nil {
		exitWithError(fmt.Errorf("failed to open session store: %w", err))
	}
	defer closeStore()

	s, err := apply(ctx, store, id, action, time.Now())
	if err != nil {
		closeStore()
		exitWithError(err)
	}
	if s == nil {
		fmt.Printf("Session %s deleted\n", id)
		return
	}

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		closeStore()
		exitWithError(fmt.Errorf("failed to encode session: %w", err))
	}
	fmt.Println(string(out))
}

// apply runs action against the store. It returns nil after a delete.
func apply(ctx context.Context, store domain.SessionRepository, id, action string, now time.Time) (*domain.Session, error) {
	switch action {
	case "show":
		s, err := store.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewSession(id), nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		return s, nil
	case "pro":
		s := entitlement.Upgrade(domain.NewSession(id), now)
		if err := store.Put(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to upgrade session: %w", err)
		}
		return s, nil
	case "free", "reset":
		s := entitlement.Reset(id, now)
		if err := store.Put(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to reset session: %w", err)
		}
		return s, nil
	case "delete":
		if err := store.Clear(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to delete session: %w", err)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported action %q", action)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

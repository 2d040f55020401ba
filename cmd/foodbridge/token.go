package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/polkiloo/foodbridge/internal/config"
	"github.com/polkiloo/foodbridge/internal/pkg/auth"
)

// issueToken prints a signed actor token using the configured secret and TTL.
//
//	foodbridge token -id 42 -role organization
func issueToken(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.Int64("id", 0, "actor id")
	role := fs.String("role", "", "actor role: donor, organization or receiver")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	return writeToken(auth.NewJWTStrategy(cfg.JWTSecret, auth.Options{TTL: cfg.TokenTTL}), auth.Actor{ID: *id, Role: auth.Role(*role)}, stdout, stderr)
}

func writeToken(strategy auth.Strategy, actor auth.Actor, stdout, stderr io.Writer) int {
	if actor.ID <= 0 {
		fmt.Fprintln(stderr, "id must be positive")
		return 2
	}
	token, err := strategy.IssueToken(actor)
	if err != nil {
		fmt.Fprintf(stderr, "issue token: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}

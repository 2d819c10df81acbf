// neogm validates graph schema files and installs the constraints and
// indexes they imply.
//
// Usage:
//
//	neogm -schema schema.ngm                 # validate and print DDL
//	neogm -schema schema.ngm -install \
//	      -uri bolt://localhost:7687 -user neo4j -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/CaliLuke/go-neogm/bolt"
	"github.com/CaliLuke/go-neogm/ogm"
	"github.com/CaliLuke/go-neogm/sdl"
)

const version = "0.1.0"

func main() {
	schemaFile := flag.String("schema", "", "Path to schema file (required)")
	install := flag.Bool("install", false, "Apply constraints and indexes to the database")
	uri := flag.String("uri", "bolt://localhost:7687", "Database URI")
	user := flag.String("user", "neo4j", "Database user")
	password := flag.String("password", "", "Database password")
	database := flag.String("database", "", "Named database (server default when empty)")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall operation timeout")
	verbose := flag.Bool("verbose", false, "Log connection and install progress")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("neogm %s\n", version)
		os.Exit(0)
	}

	if *schemaFile == "" {
		fmt.Fprintln(os.Stderr, "error: -schema flag is required")
		flag.Usage()
		os.Exit(1)
	}

	specs, err := sdl.LoadFile(*schemaFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	registry := ogm.NewRegistry()
	for _, spec := range specs {
		if _, err := registry.Register(spec); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	constraints := registry.ConstraintSpecs()
	fmt.Printf("%d kinds, %d schema statements\n", len(registry.Kinds()), len(constraints))
	for _, c := range constraints {
		fmt.Println(c.Statement)
	}

	if !*install {
		return
	}

	logger := zap.NewNop()
	if *verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg := bolt.DefaultConfig()
	cfg.URI = *uri
	cfg.Username = *user
	cfg.Password = *password
	cfg.Database = *database
	cfg.Logger = logger

	driver, err := bolt.Connect(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = driver.Close(context.Background()) }()

	db := ogm.NewDatabase(driver, ogm.WithRegistry(registry), ogm.WithLogger(logger))
	if err := db.InstallLabels(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("schema installed")
}

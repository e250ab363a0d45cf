package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/lromao/salesforce-automation-workbench/internal/api"
	"github.com/lromao/salesforce-automation-workbench/internal/config"
	"github.com/lromao/salesforce-automation-workbench/internal/models"
	"github.com/lromao/salesforce-automation-workbench/internal/salesforce"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-v" {
			fmt.Printf("workbench %s (commit: %s, built: %s)\n", version, commit, date)
			os.Exit(0)
		}
	}

	cfg := config.Parse()

	server := api.NewServer(cfg.Deploy.Switching())

	// Load pre-configured sessions from the config file
	for _, sc := range cfg.Sessions {
		sess := &models.Session{
			Name:        sc.Name,
			InstanceURL: sc.InstanceURL,
			AccessToken: sc.AccessToken,
			APIVersion:  sc.APIVersion,
		}
		if sess.APIVersion == "" {
			sess.APIVersion = "62.0"
		}
		if sess.Name == "" {
			sess.Name = sess.InstanceURL
		}
		server.Sessions.Create(sess)
		fmt.Printf("Loaded session: %s (%s)\n", sess.Name, sess.BaseURL())

		// Verify the bearer token early
		client := salesforce.NewClient(sess)
		if err := client.Ping(); err != nil {
			fmt.Printf("  AUTH FAILED: %s: %v\n", sess.Name, err)
		} else {
			fmt.Printf("  AUTH OK: %s: session is live\n", sess.Name)
		}
	}

	handler := api.NewRouter(server)

	fmt.Printf("Salesforce Automation Workbench %s starting on %s\n", version, cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, handler); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/wanderlist/internal/config"
)

// cmdInit initializes Wanderlist for first-time use
func cmdInit() error {
	fmt.Println("Wanderlist - First-Time Setup")
	fmt.Println("=============================")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	// 1. Create directory structure
	fmt.Print("Creating ~/.wanderlist directory structure... ")
	wanderlistDir, err := config.EnsureWanderlistDir()
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	fmt.Println("✓")

	// 2. Create default config if it doesn't exist
	configPath := filepath.Join(wanderlistDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Print("Creating default configuration... ")
		if err := config.SaveLocalConfig(config.DefaultLocalConfig()); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Println("✓")
	} else {
		fmt.Println("Configuration already exists ✓")
	}

	// 3. Configure Amadeus credentials
	fmt.Println()
	fmt.Println("Amadeus API Setup")
	fmt.Println("-----------------")
	fmt.Println("Flight search needs Amadeus for Developers credentials")
	fmt.Println("(https://developers.amadeus.com, the free test tier works).")
	fmt.Println()

	cfg, _ := config.LoadLocalConfig()

	if cfg != nil && cfg.Amadeus.APIKey != "" {
		fmt.Println("Amadeus API key: already configured ✓")
	} else {
		fmt.Print("Enter Amadeus API key (or press Enter to skip): ")
		key, _ := reader.ReadString('\n')
		key = strings.TrimSpace(key)

		if key != "" {
			fmt.Print("Enter Amadeus API secret: ")
			secret, _ := reader.ReadString('\n')
			secret = strings.TrimSpace(secret)

			if err := config.SaveSecrets(key, secret); err != nil {
				fmt.Printf("  ⚠ Failed to save: %v\n", err)
			} else {
				fmt.Println("  ✓ Saved")
			}
		}
	}

	// 4. Summary
	fmt.Println()
	fmt.Println("Setup Complete!")
	fmt.Println("===============")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. wanderlist start    # Start the daemon")
	fmt.Println("  2. wanderlist doctor   # Verify configuration")
	fmt.Println("  3. wanderlist status   # Check storage health")

	return nil
}

// cmdDoctor checks configuration and daemon health
func cmdDoctor() error {
	fmt.Println("Checking configuration...")

	allGood := true

	// Check wanderlist directory
	fmt.Print("Directory:   ")
	wanderlistDir, err := config.WanderlistDir()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		allGood = false
	} else if _, err := os.Stat(wanderlistDir); os.IsNotExist(err) {
		fmt.Println("✗ not created (run 'wanderlist init' to create)")
		allGood = false
	} else {
		fmt.Printf("✓ %s\n", wanderlistDir)
	}

	// Check config file
	fmt.Print("Config:      ")
	localCfg, err := config.LoadLocalConfig()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		allGood = false
	} else {
		fmt.Println("✓ loaded")
	}

	// Check Amadeus credentials
	fmt.Print("Amadeus:     ")
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		allGood = false
	} else if cfg.AmadeusAPIKey == "" && (localCfg == nil || localCfg.Amadeus.APIKey == "") {
		fmt.Println("⚠ no credentials (flight search will fail)")
	} else {
		fmt.Println("✓ configured")
	}

	// Check storage backend
	fmt.Print("Storage:     ")
	if cfg != nil && cfg.DatabaseURL != "" {
		fmt.Println("✓ postgres")
	} else if cfg != nil {
		fmt.Printf("✓ sqlite (%s)\n", cfg.SQLitePath)
	}

	// Check event queue
	fmt.Print("Queue:       ")
	if cfg != nil && cfg.AMQPURL != "" {
		fmt.Println("✓ configured")
	} else {
		fmt.Println("- disabled (set AMQP_URL to publish flight events)")
	}

	// Check daemon
	fmt.Print("Daemon:      ")
	if isRunning() {
		fmt.Println("✓ running")
	} else {
		fmt.Println("✗ not running (run 'wanderlist start')")
		allGood = false
	}

	fmt.Println()
	if allGood {
		fmt.Println("All checks passed ✓")
	} else {
		fmt.Println("Some checks failed. See above for details.")
	}

	return nil
}

// cmdConfig shows the current configuration
func cmdConfig() error {
	localCfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load local config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("Daemon:")
	fmt.Printf("  bind: %s:%d\n", localCfg.Daemon.Bind, localCfg.Daemon.Port)
	fmt.Printf("  log_level: %s\n", localCfg.Daemon.LogLevel)
	fmt.Println()

	fmt.Println("Storage:")
	if cfg.DatabaseURL != "" {
		fmt.Println("  backend: postgres")
	} else {
		fmt.Println("  backend: sqlite")
		fmt.Printf("  path: %s\n", cfg.SQLitePath)
	}
	fmt.Println()

	fmt.Println("Amadeus:")
	fmt.Printf("  base_url: %s\n", cfg.AmadeusBaseURL)
	if cfg.AmadeusAPIKey != "" || localCfg.Amadeus.APIKey != "" {
		fmt.Println("  credentials: configured")
	} else {
		fmt.Println("  credentials: missing")
	}
	fmt.Println()

	fmt.Println("Queue:")
	if cfg.AMQPURL != "" {
		fmt.Println("  amqp: configured")
	} else {
		fmt.Println("  amqp: disabled")
	}

	return nil
}

// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/optiflow/pulse/internal/pulse/config"
	"github.com/optiflow/pulse/internal/pulse/db"
	"github.com/optiflow/pulse/internal/pulse/health"
	"github.com/optiflow/pulse/internal/pulse/types"
	"github.com/optiflow/pulse/pkg/logger"
)

// NewCheckCmd creates the check command: a one-shot health check of all
// configured dependencies.
func NewCheckCmd() *cobra.Command {
	var (
		force      bool
		service    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe all dependencies and report the aggregated status",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.InitLogger(cfg.Environment)

			manager, err := buildManager(cfg)
			if err != nil {
				return err
			}

			if service != "" {
				rec, err := manager.Check(cmd.Context(), service, force)
				if err != nil {
					return err
				}
				return printRecord(cmd, rec, jsonOutput)
			}

			snapshot, err := manager.CheckOverall(cmd.Context(), force)
			if err != nil {
				return err
			}
			if err := printSnapshot(cmd, snapshot, jsonOutput); err != nil {
				return err
			}
			if snapshot.OverallStatus == types.StatusFailed {
				return fmt.Errorf("overall status: %s", snapshot.OverallStatus)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "bypass the result cache")
	cmd.Flags().StringVar(&service, "service", "", "check a single service (database, redis, clickhouse)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the raw snapshot as JSON")

	return cmd
}

// buildManager wires the probes from configuration.
func buildManager(cfg *config.Config) (*health.Manager, error) {
	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	redisClient, err := db.OpenRedis(cfg.Redis)
	if err != nil {
		return nil, err
	}
	var cacheClient health.RedisClient
	if redisClient != nil {
		cacheClient = redisClient
	}

	return health.NewManager(
		health.ManagerConfig{
			Environment:        cfg.Environment,
			CacheTTL:           cfg.Health.CacheTTL,
			RedisRequired:      cfg.Redis.Required,
			ClickHouseRequired: cfg.ClickHouse.Required,
		},
		health.NewDatabaseProbe(gormDB),
		health.NewRedisProbe(cacheClient, cfg.RedisConfigured()),
		health.NewClickHouseProbe(cfg.ClickHouse),
	)
}

func printSnapshot(cmd *cobra.Command, snapshot *types.SystemHealthSnapshot, asJSON bool) error {
	if asJSON {
		out, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Printf("environment: %s\n", snapshot.Environment)
	for _, name := range []string{health.ServiceDatabase, health.ServiceRedis, health.ServiceClickHouse} {
		rec, ok := snapshot.Services[name]
		if !ok {
			continue
		}
		line := fmt.Sprintf("  %-12s %s", name, statusColor(rec.Status)(string(rec.Status)))
		if rec.ResponseTimeMS != nil {
			line += fmt.Sprintf("  %.1fms", *rec.ResponseTimeMS)
		}
		if rec.Error != "" {
			line += "  " + rec.Error
		}
		cmd.Println(line)
	}
	cmd.Printf("overall: %s\n", statusColor(snapshot.OverallStatus)(string(snapshot.OverallStatus)))
	return nil
}

func printRecord(cmd *cobra.Command, rec types.ServiceHealthRecord, asJSON bool) error {
	if asJSON {
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	}
	cmd.Printf("%s: %s\n", rec.Service, statusColor(rec.Status)(string(rec.Status)))
	if rec.Error != "" {
		cmd.Printf("  error: %s\n", rec.Error)
	}
	return nil
}

func statusColor(status types.Status) func(...any) string {
	switch status {
	case types.StatusHealthy:
		return color.New(color.FgGreen).SprintFunc()
	case types.StatusDegraded:
		return color.New(color.FgYellow).SprintFunc()
	case types.StatusFailed:
		return color.New(color.FgRed).SprintFunc()
	default:
		return color.New(color.Faint).SprintFunc()
	}
}

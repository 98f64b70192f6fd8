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

// Package cmd builds the pulse command tree.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the pulse health checker.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Dependency health checker for the agent cost-optimization backend",
		Long: "pulse probes the backend's relational, cache, and analytics stores, " +
			"tracks response-time statistics, and derives one system-wide status " +
			"from per-service statuses using configured criticality rules.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", ".", "directory containing pulse.yaml")

	cmd.AddCommand(NewCheckCmd())

	return cmd
}

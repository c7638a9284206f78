package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/g4install/internal/deps"
	"github.com/tsukumogami/g4install/internal/platform"
	"github.com/tsukumogami/g4install/internal/version"
)

var (
	packagesRelease string
	packagesKernel  string
)

var packagesCmd = &cobra.Command{
	Use:   "packages [distro]",
	Short: "Show the system packages a Geant4 build needs",
	Long: `Show the build dependencies for a distribution family and the command
that installs them. Without an argument the running host is detected.

The distro may be a family (arch, debian, opensuse, rhel, fedora) or a
distribution name such as "Ubuntu 22.04".

Examples:
  g4install packages
  g4install packages debian --version 11.2
  g4install packages fedora --kernel 6.9.0-1.fc40.x86_64`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var v version.TargetVersion
		if packagesRelease != "" {
			parsed, err := version.Parse(packagesRelease)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitWithCode(ExitUsage)
			}
			v = parsed
		}

		var family platform.DistroFamily
		kernel := packagesKernel
		if len(args) == 1 {
			f, err := platform.ParseFamily(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitWithCode(ExitUsage)
			}
			family = f
		} else {
			id := platform.NewProber(nil).Detect(cmd.Context())
			if err := id.CheckSupported(); err != nil {
				exitWithCode(reportError(err))
			}
			family = id.Family()
			if kernel == "" {
				kernel = id.KernelRelease
			}
			fmt.Printf("Detected: %s\n", id.DisplayName())
		}

		if err := printPackages(os.Stdout, family, v, kernel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitWithCode(ExitGeneral)
		}
	},
}

func init() {
	packagesCmd.Flags().StringVar(&packagesRelease, "version", "", "Include packages specific to this release")
	packagesCmd.Flags().StringVar(&packagesKernel, "kernel", "", "Kernel release used to pick the install command")
}

// printPackages writes the package plan for family. A zero release lists
// only the base set.
func printPackages(w io.Writer, family platform.DistroFamily, v version.TargetVersion, kernel string) error {
	plan, ok := deps.PlanFor(family, v, kernel)
	if !ok {
		return fmt.Errorf("no package table for %s; install cmake, make, a C++ compiler and the Qt5, OpenGL, X11 and Expat development packages manually", family)
	}
	fmt.Fprintf(w, "Family: %s\n", family)
	if v.IsZero() {
		fmt.Fprintln(w, "Release: any (pass --version to include release-specific packages)")
	} else {
		fmt.Fprintf(w, "Release: %s\n", v.Tag())
	}
	fmt.Fprintf(w, "Packages (%d):\n", len(plan.Packages))
	for _, p := range plan.Packages {
		fmt.Fprintf(w, "  %s\n", p)
	}
	fmt.Fprintf(w, "\nInstall command:\n  %s\n", plan.CommandLine())
	return nil
}

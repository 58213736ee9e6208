package cmd

import (
	"io"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evalloc/core/generators"
	"github.com/kilianp07/evalloc/infra/tables"
)

var (
	generateN    int
	generateSeed int64
	generateOut  string
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet table commands",
}

var fleetGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random fleet as CSV",
	RunE:  runFleetGenerate,
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Charging post table commands",
}

var postsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate random charging posts as CSV",
	RunE:  runPostsGenerate,
}

func init() {
	for _, c := range []*cobra.Command{fleetGenerateCmd, postsGenerateCmd} {
		c.Flags().IntVarP(&generateN, "number", "n", 10, "number of rows to generate")
		c.Flags().Int64Var(&generateSeed, "seed", 0, "random seed")
		c.Flags().StringVarP(&generateOut, "output", "o", "", "output file, stdout when empty")
	}
	fleetCmd.AddCommand(fleetGenerateCmd)
	postsCmd.AddCommand(postsGenerateCmd)
	rootCmd.AddCommand(fleetCmd)
	rootCmd.AddCommand(postsCmd)
}

func generateTo(cmd *cobra.Command, write func(io.Writer) error) error {
	if generateOut == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(generateOut)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

func runFleetGenerate(cmd *cobra.Command, args []string) error {
	rng := rand.New(rand.NewSource(generateSeed))
	fleet, err := generators.RandomFleet(generators.FleetConfig{N: generateN}, rng)
	if err != nil {
		return err
	}
	return generateTo(cmd, func(w io.Writer) error {
		return tables.WriteFleet(w, fleet)
	})
}

func runPostsGenerate(cmd *cobra.Command, args []string) error {
	rng := rand.New(rand.NewSource(generateSeed))
	posts, err := generators.RandomChargingPosts(generators.PostsConfig{N: generateN}, rng)
	if err != nil {
		return err
	}
	return generateTo(cmd, func(w io.Writer) error {
		return tables.WriteChargingPosts(w, posts)
	})
}

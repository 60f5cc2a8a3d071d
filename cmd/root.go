package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillvault",
	Short: "SkillVault credential service",
	Long:  "SkillVault issues and verifies skill certificates for colleges, students and recruiters.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Load environment variables from this file before reading config")
	rootCmd.Flags().Bool("migrate", false, "Apply pending database migrations before serving")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createSuperAdminCmd)
}

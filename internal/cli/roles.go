package cli

import (
	"fmt"
	"strconv"

	"talentalign/internal/common"
	"talentalign/internal/store"
	"talentalign/internal/types"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Manage stored role profiles",
	Long: `Manage the role profiles kept in the local store. Stored roles can be
referenced by id in compare runs instead of passing job description files.`,
}

var rolesAddCmd = &cobra.Command{
	Use:   "add [job-description-file]",
	Short: "Store a job description as a role profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runRolesAdd,
}

var rolesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored role profiles",
	Args:  cobra.NoArgs,
	RunE:  runRolesList,
}

var rolesShowCmd = &cobra.Command{
	Use:   "show [role-id]",
	Short: "Show a stored role profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runRolesShow,
}

var rolesRemoveCmd = &cobra.Command{
	Use:     "remove [role-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a stored role profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runRolesRemove,
}

var rolesAddTitle string
var rolesAddMode string
var rolesListLimit int

func init() {
	rolesAddCmd.Flags().StringVarP(&rolesAddTitle, "title", "t", "", "Role title (required)")
	rolesAddCmd.Flags().StringVarP(&rolesAddMode, "mode", "m", "standard", "Default analysis mode: standard or strict")
	_ = rolesAddCmd.MarkFlagRequired("title")

	rolesListCmd.Flags().IntVar(&rolesListLimit, "limit", 0, "Maximum number of roles to list")

	rolesCmd.AddCommand(rolesAddCmd)
	rolesCmd.AddCommand(rolesListCmd)
	rolesCmd.AddCommand(rolesShowCmd)
	rolesCmd.AddCommand(rolesRemoveCmd)
}

// requireStore opens the configured store, failing when persistence is
// not configured
func requireStore(cmd *cobra.Command) (*store.Store, error) {
	cfg := getConfigFromContext(cmd.Context())
	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("role management requires storage.path to be configured")
	}
	return st, nil
}

func parseRoleID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("role id must be a positive integer, got %q", arg)
	}
	return id, nil
}

func runRolesAdd(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	mode := types.AnalysisMode(rolesAddMode)
	if !mode.Valid() {
		return fmt.Errorf("mode must be 'standard' or 'strict', got %q", rolesAddMode)
	}

	fileProcessor := common.NewFileProcessor(logger)
	jdText, err := fileProcessor.ReadDocument(args[0])
	if err != nil {
		return err
	}

	st, err := requireStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	role, err := st.CreateRole(cmd.Context(), rolesAddTitle, jdText, mode)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	fmt.Printf("Stored role %d: %s (%s)\n", role.ID, role.Title, role.Mode)
	return nil
}

func runRolesList(cmd *cobra.Command, args []string) error {
	st, err := requireStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	roles, err := st.ListRoles(cmd.Context(), rolesListLimit)
	if err != nil {
		return fmt.Errorf("failed to list roles: %w", err)
	}

	if len(roles) == 0 {
		fmt.Println("No stored roles.")
		return nil
	}

	for _, role := range roles {
		fmt.Printf("%4d  %-40s %-8s %s\n", role.ID, role.Title, role.Mode, role.UpdatedAt)
	}
	return nil
}

func runRolesShow(cmd *cobra.Command, args []string) error {
	id, err := parseRoleID(args[0])
	if err != nil {
		return err
	}

	st, err := requireStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	role, err := st.GetRole(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("Role %d: %s\n", role.ID, role.Title)
	fmt.Printf("Mode: %s\n", role.Mode)
	fmt.Printf("Created: %s\nUpdated: %s\n\n", role.CreatedAt, role.UpdatedAt)
	fmt.Println(role.JDText)
	return nil
}

func runRolesRemove(cmd *cobra.Command, args []string) error {
	id, err := parseRoleID(args[0])
	if err != nil {
		return err
	}

	st, err := requireStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.DeleteRole(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Printf("Deleted role %d\n", id)
	return nil
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hengxingtx/ragnews-cli/internal/remote"
)

func newKBCmd() *cobra.Command {
	kbCmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage knowledge bases",
	}

	kbCmd.AddCommand(newKBListCmd())
	kbCmd.AddCommand(newKBCreateCmd())
	kbCmd.AddCommand(newKBDeleteCmd())
	kbCmd.AddCommand(newKBFilesCmd())
	kbCmd.AddCommand(newKBUploadCmd())
	kbCmd.AddCommand(newKBRemoveFileCmd())
	return kbCmd
}

func newKBListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List knowledge bases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKBList(cmd.Context())
		},
	}
}

func newKBCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKBCreate(cmd.Context(), args[0], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")
	return cmd
}

func newKBDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a knowledge base and all its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "knowledge base")
			if err != nil {
				return err
			}
			return runKBDelete(cmd.Context(), id, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newKBFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files <id>",
		Short: "List the files of a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "knowledge base")
			if err != nil {
				return err
			}
			return runKBFiles(cmd.Context(), id)
		},
	}
}

func newKBUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <id> <path>",
		Short: "Upload a document to a knowledge base",
		Long: `Upload a document to a knowledge base. The backend ingests uploads
asynchronously: a new file starts as "pending" and moves through
"processing" to "completed" or "error". Check progress with "ragnews kb
files" — the client never polls on its own.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "knowledge base")
			if err != nil {
				return err
			}
			return runKBUpload(cmd.Context(), id, args[1])
		},
	}
}

func newKBRemoveFileCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id> <file-id>",
		Short: "Delete a file from a knowledge base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "knowledge base")
			if err != nil {
				return err
			}
			fileID, err := parseID(args[1], "file")
			if err != nil {
				return err
			}
			return runKBRemoveFile(cmd.Context(), id, fileID, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func runKBList(ctx context.Context) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	if err := rt.requireSession(); err != nil {
		return err
	}

	bases, err := rt.client.ListBases(ctx)
	if err != nil {
		return cliError(err)
	}
	if len(bases) == 0 {
		fmt.Println("No knowledge bases.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFILES\tUPDATED\tDESCRIPTION")
	for _, kb := range bases {
		desc := ""
		if kb.Description != nil {
			desc = *kb.Description
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			kb.ID, kb.Name, kb.FileCount,
			kb.UpdatedAt.Format("2006-01-02 15:04"), desc)
	}
	return w.Flush()
}

func runKBCreate(ctx context.Context, name, description string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	if err := rt.requireSession(); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}

	var desc *string
	if description != "" {
		desc = &description
	}
	if err := rt.client.CreateBase(ctx, name, desc); err != nil {
		return cliError(err)
	}

	fmt.Printf("Created knowledge base %q.\n", name)
	return nil
}

func runKBDelete(ctx context.Context, id int64, yes bool) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	if err := rt.requireSession(); err != nil {
		return err
	}

	if !yes && !askConfirmation(fmt.Sprintf("Delete knowledge base %d and all its files?", id)) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := rt.client.DeleteBase(ctx, id); err != nil {
		return cliError(err)
	}
	fmt.Printf("Deleted knowledge base %d.\n", id)
	return nil
}

func runKBFiles(ctx context.Context, id int64) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	if err := rt.requireSession(); err != nil {
		return err
	}

	files, err := rt.client.ListFiles(ctx, id)
	if err != nil {
		return cliError(err)
	}
	if len(files) == 0 {
		fmt.Println("No files.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tSTATUS\tUPLOADED")
	for _, f := range files {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			f.ID, f.OriginalFilename,
			humanize.Bytes(uint64(f.FileSize)), f.Status,
			f.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runKBUpload(ctx context.Context, id int64, path string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	if err := rt.requireSession(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := rt.client.UploadFile(ctx, id, filepath.Base(path), f); err != nil {
		return cliError(err)
	}

	fmt.Printf("Uploaded %s (ingestion starts as \"pending\").\n", filepath.Base(path))
	return nil
}

func runKBRemoveFile(ctx context.Context, id, fileID int64, yes bool) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	if err := rt.requireSession(); err != nil {
		return err
	}

	if !yes && !askConfirmation(fmt.Sprintf("Delete file %d from knowledge base %d?", fileID, id)) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := rt.client.DeleteFile(ctx, id, fileID); err != nil {
		return cliError(err)
	}
	fmt.Printf("Deleted file %d.\n", fileID)
	return nil
}

// askConfirmation prompts for an explicit "y" on stdin. Anything else
// declines; destructive commands never proceed by default.
func askConfirmation(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// parseID parses a positive integer command argument.
func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", what, arg)
	}
	return id, nil
}

// cliError translates remote failures into actionable CLI messages.
func cliError(err error) error {
	var connErr *remote.ConnError
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		return errors.New(`session expired or invalid: run "ragnews login"`)
	case errors.As(err, &connErr):
		return fmt.Errorf("cannot reach server: %w", connErr.Err)
	default:
		return err
	}
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/search"
	"github.com/raphaelgruber/procview/internal/store"
	"github.com/raphaelgruber/procview/internal/tui"
)

var (
	folderSearch    string
	folderExpandAll bool
	folderRefresh   bool
	folderPlain     bool
	recentSearch    string
)

// browseTree runs the interactive folder browser; tests replace it.
var browseTree = tui.Browse

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the folder tree from the backend",
	Long: `Fetch the procedures available to the signed-in user and cache them
locally. When the backend is unreachable the cached tree is kept.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Browse the folder tree",
	Long: `Browse the cached folder tree. The tree is fetched first if nothing
is cached yet.

When stdout is a terminal the tree opens in an interactive browser: enter
toggles a folder or opens a procedure, / searches by name. Folders keep the
state you gave them while you search and view procedures. Otherwise, or with
--plain, the visible rows are printed.

Examples:
  procview folders
  procview folders --expand-all --plain
  procview folders --search pump`,
	Args: cobra.NoArgs,
	RunE: runFolders,
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently opened procedures",
	Long: `List the last opened procedures, most recent first.

Examples:
  procview recent
  procview recent --search valve`,
	Args: cobra.NoArgs,
	RunE: runRecent,
}

func init() {
	foldersCmd.Flags().StringVarP(&folderSearch, "search", "s", "", "only show procedures whose name contains the term")
	foldersCmd.Flags().BoolVarP(&folderExpandAll, "expand-all", "a", false, "expand every folder")
	foldersCmd.Flags().BoolVar(&folderRefresh, "refresh", false, "fetch the tree before listing")
	foldersCmd.Flags().BoolVar(&folderPlain, "plain", false, "print the tree instead of starting the browser")

	recentCmd.Flags().StringVarP(&recentSearch, "search", "s", "", "only show procedures whose name contains the term")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tree, err := library.RefreshTree(ctx)
	if err != nil {
		if tree == nil {
			return fmt.Errorf("sync: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), defaultTheme.errorStyle().Render("Backend unavailable, keeping cached tree: "+err.Error()))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d folders, %d procedures\n", len(tree), search.CountProcedures(tree))
	return nil
}

func runFolders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var tree []models.FolderTree
	var err error
	if !folderRefresh {
		tree, err = library.CachedTree(ctx)
	}
	if folderRefresh || errors.Is(err, store.ErrNotFound) {
		tree, err = library.RefreshTree(ctx)
		if err != nil && tree != nil {
			logger.Warn("using cached folder tree", "error", err)
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("load folders: %w", err)
	}

	exp := search.NewExpansion()
	if folderExpandAll {
		exp.ExpandAll(tree)
	}
	if !folderPlain && stdoutIsTerminal() && stdinIsTerminal() {
		return browseFolders(cmd, tree, exp)
	}

	if strings.TrimSpace(folderSearch) != "" {
		tree = search.Filter(tree, folderSearch)
		exp.ExpandMatches(tree)
	}

	out := cmd.OutOrStdout()
	if len(tree) == 0 {
		if folderSearch != "" {
			fmt.Fprintf(out, "No procedures match %q.\n", folderSearch)
		} else {
			fmt.Fprintln(out, "No folders found.")
		}
		return nil
	}

	printRows(out, search.Flatten(tree, exp))
	return nil
}

// browseFolders alternates between the browser and the viewer until the user
// quits the browser. Expansion and search term carry over between rounds.
func browseFolders(cmd *cobra.Command, tree []models.FolderTree, exp *search.Expansion) error {
	ctx := cmd.Context()
	term := folderSearch
	for {
		res, err := browseTree(tree, exp, term, logger)
		if err != nil {
			return fmt.Errorf("browser: %w", err)
		}
		if !res.Selected {
			return nil
		}
		term = res.Term

		doc := library.Open(ctx, res.Procedure)
		logger.Debug("opened from folders", "procedure", doc.ID)
		if err := view(cmd, doc, false); err != nil {
			return err
		}
	}
}

// printRows draws the visible folder rows as an indented tree.
func printRows(w io.Writer, rows []search.Row) {
	for _, r := range rows {
		pad := strings.Repeat("  ", r.Depth)
		switch r.Kind {
		case search.FolderRow:
			marker := "▸"
			if r.Expanded {
				marker = "▾"
			}
			n := search.CountProcedures([]models.FolderTree{*r.Folder})
			fmt.Fprintf(w, "%s%s %s %s\n", pad, marker,
				defaultTheme.folderStyle().Render(r.Label()),
				defaultTheme.hintStyle().Render(fmt.Sprintf("(%d)", n)))
		case search.ProcedureRow:
			fmt.Fprintf(w, "%s• %s %s\n", pad, r.Label(),
				defaultTheme.hintStyle().Render(r.Procedure.ID))
		}
	}
}

func runRecent(cmd *cobra.Command, args []string) error {
	cache := library.Recent(cmd.Context())
	list := cache.Filter(recentSearch)

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(out, "No recent procedures.")
		return nil
	}

	fmt.Fprintf(out, "Recent procedures (%d):\n\n", len(list))
	for i, p := range list {
		fmt.Fprintf(out, "%d. %s %s\n", i+1, p.Name, defaultTheme.hintStyle().Render(p.ID))
		if verbose && p.Author != "" {
			fmt.Fprintf(out, "   by %s, version %d\n", p.Author, p.Version)
		}
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkmlang/tkml/internal/config"
	"github.com/tkmlang/tkml/internal/parser"
	"github.com/tkmlang/tkml/internal/ui"
)

var version = "0.1.0"

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate markup files",
	Long: `Parses a markup file, or recursively every .tkml file under a
directory, and reports each syntax error with its file and byte offset.
Exits nonzero when any file fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the parsed node tree",
	Long: `Parses a markup file and prints its node tree as an indented
outline: tag name, layout manager, and attributes per node.`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a markup file to the terminal",
	Long: `Parses a markup file and prints a static terminal mockup of the
widget tree: pack children are stacked, grid children arranged by
row/column, place children offset by x/y.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var rootCmd = &cobra.Command{
	Use:   "tkml [file]",
	Short: "Preview declarative UI markup",
	Long: `Inspect tkml markup files interactively.

A tkml file describes a widget tree in three bracket dialects, each
selecting a layout manager: <...> packs, {...} grids, [...] places.
The preview shows the node tree, per-node attributes, and a live
terminal mockup of the described interface.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().IntP("width", "w", 0, "Render width (default from config)")
	treeCmd.Flags().IntP("indent", "i", 0, "Indent width (default from config)")

	viper.BindPFlag("preview_width", renderCmd.Flags().Lookup("width"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

func runPreview(cmd *cobra.Command, args []string) error {
	path := config.GetPath()
	if len(args) > 0 {
		path = args[0]
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path error: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; pass a markup file (or use 'tkml check')", path)
	}

	doc, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	return ui.Run(doc)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := config.GetPath()
	if len(args) > 0 {
		path = args[0]
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path error: %w", err)
	}

	if !info.IsDir() {
		doc, err := parser.ParseFile(path)
		if err != nil {
			return err
		}
		fmt.Printf("ok: %s (%d nodes)\n", doc.Path, countNodes(doc.Root))
		return nil
	}

	docs, err := parser.ParseDirectory(path)
	for _, doc := range docs {
		fmt.Printf("ok: %s (%d nodes)\n", doc.Path, countNodes(doc.Root))
	}
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no .tkml files found under %s", path)
	}
	return nil
}

func runTree(cmd *cobra.Command, args []string) error {
	doc, err := parser.ParseFile(args[0])
	if err != nil {
		return err
	}

	indent, _ := cmd.Flags().GetInt("indent")
	if indent <= 0 {
		indent = config.GetIndentWidth()
	}

	var b strings.Builder
	writeOutline(&b, doc.Root, 0, indent)
	fmt.Print(b.String())
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, err := parser.ParseFile(args[0])
	if err != nil {
		return err
	}

	width := config.GetPreviewWidth()
	fmt.Println(ui.Render(doc.Root, width))
	return nil
}

// writeOutline prints one node per line: name, layout manager, and
// attributes in sorted order.
func writeOutline(b *strings.Builder, node *parser.Node, depth, indent int) {
	b.WriteString(strings.Repeat(" ", depth*indent))
	b.WriteString(node.Name)
	b.WriteString(" [")
	b.WriteString(string(node.Layout))
	b.WriteString("]")

	keys := make([]string, 0, len(node.Attributes))
	for key := range node.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(node.Attributes[key].String())
	}
	b.WriteString("\n")

	for _, child := range node.Children {
		writeOutline(b, child, depth+1, indent)
	}
}

func countNodes(node *parser.Node) int {
	count := 1
	for _, child := range node.Children {
		count += countNodes(child)
	}
	return count
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

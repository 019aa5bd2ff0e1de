package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/muzzletov/arbre"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "v1.1.0"

	strict   bool
	query    string
	xpathExp string
	format   = "tree"
	logLevel = "info"

	cmd = &cobra.Command{
		Use:   "arbre [file|-|url]",
		Short: "parse XML-like markup into a keyed tree",
		Long: "arbre parses an XML-like document from a file, stdin (-) or an http(s)\n" +
			"URL and prints the resulting tree. A selector (--query) or an XPath\n" +
			"expression (--xpath) restricts the output to the matching nodes.",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			initLog()
			return run(args[0], cmd.OutOrStdout())
		},
	}
)

func main() {
	cmd.PersistentFlags().BoolVar(&strict, "strict", false, "exit nonzero when the document has parse diagnostics")
	cmd.PersistentFlags().StringVar(&query, "query", "", "selector to evaluate, e.g. 'feed > entry .title'")
	cmd.PersistentFlags().StringVar(&xpathExp, "xpath", "", "xpath expression to evaluate, e.g. '//entry[@id]'")
	cmd.PersistentFlags().StringVar(&format, "format", format, "output format: tree|json|markup")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "log level: debug|info|warn|error")

	if err := cmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(source string, out io.Writer) error {
	if query != "" && xpathExp != "" {
		return errors.New("use either --query or --xpath, not both")
	}

	data, err := read(source)
	if err != nil {
		return err
	}

	p := arbre.NewParserWithOptions(string(data), arbre.Options{Strict: strict})

	for _, diag := range p.Errors() {
		if strict {
			logrus.Errorf("%s at offset %d: %s", diag.Kind, diag.Offset, diag.Message)
		} else {
			logrus.Warnf("%s at offset %d: %s", diag.Kind, diag.Offset, diag.Message)
		}
	}

	if p.Err() != nil {
		return fmt.Errorf("%s has %d parse diagnostics", source, len(p.Errors()))
	}

	nodes := []*arbre.Node{p.Root()}

	switch {
	case query != "":
		nodes = p.Query(query).Get()
	case xpathExp != "":
		nodes, err = p.Root().Select(xpathExp)
		if err != nil {
			return err
		}
	}

	if len(nodes) == 0 {
		logrus.Warn("nothing matched")
		return nil
	}

	for _, node := range nodes {
		if err := render(out, node); err != nil {
			return err
		}
	}

	return nil
}

func read(source string) ([]byte, error) {
	switch {
	case source == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil

	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		logrus.Debugf("fetching %s", source)
		return arbre.NewClient().Fetch(source)

	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return data, nil
	}
}

func render(out io.Writer, node *arbre.Node) error {
	switch format {
	case "tree":
		writeTree(out, node, "", 0)
		return nil

	case "json":
		data, err := json.MarshalIndent(node, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err

	case "markup":
		_, err := fmt.Fprintln(out, node.Markup())
		return err

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// writeTree prints one node per line, indented by depth. The child key is
// shown when it differs from the bare name, so repeated siblings stay
// addressable from the output.
func writeTree(out io.Writer, node *arbre.Node, key string, depth int) {
	label := node.Name
	if label == "" {
		label = "/"
	}
	if key != "" && key != node.Name {
		label += " (" + key + ")"
	}

	line := strings.Repeat("  ", depth) + label

	if node.Attributes.Len() > 0 {
		pairs := make([]string, 0, node.Attributes.Len())
		for _, name := range node.Attributes.Keys() {
			pairs = append(pairs, name+"="+strconv.Quote(node.Attributes.Get(name)))
		}
		line += " [" + strings.Join(pairs, " ") + "]"
	}

	if node.Text != "" {
		line += " " + strconv.Quote(node.Text)
	}

	fmt.Fprintln(out, line)

	for _, k := range node.Children {
		writeTree(out, node.ChildMap[k], k, depth+1)
	}
}

func initLog() {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(switchLogLevel())
	logrus.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		TimestampFormat: "2006-01-02 15:04:05",
		NoColors:        true,
	})
}

func switchLogLevel() logrus.Level {
	switch logLevel {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

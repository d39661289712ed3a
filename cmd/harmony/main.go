// Command harmony is the embedding shell: it runs scripts and modules under
// a fresh agent/realm pair and offers a small REPL.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	harmony "github.com/joeyhub/harmony"
)

var (
	log = logrus.New()

	flagFeatures []string
	flagModule   bool
	flagVerbose  bool
)

func main() {
	root := &cobra.Command{
		Use:           "harmony",
		Short:         "A specification-faithful ECMAScript interpreter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&flagFeatures, "feature", nil, "enable a named feature flag (repeatable)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	runCmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a script or module file",
		Args:  cobra.ExactArgs(1),
		RunE:  runFile,
	}
	runCmd.Flags().BoolVarP(&flagModule, "module", "m", false, "evaluate as a module")

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive evaluation loop",
		RunE:  runREPL,
	}

	featuresCmd := &cobra.Command{
		Use:   "features",
		Short: "List the known feature flags",
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range harmony.Features() {
				fmt.Printf("%-55s %s\n", f.Name, f.URL)
			}
		},
	}

	root.AddCommand(runCmd, replCmd, featuresCmd)
	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRealm(fs afero.Fs, baseDir string) (*harmony.Realm, error) {
	if flagVerbose {
		log.SetLevel(logrus.DebugLevel)
	}
	agent, err := harmony.NewAgent(harmony.AgentOptions{
		Features: flagFeatures,
		Hooks: harmony.HostHooks{
			PromiseRejectionTracker: func(promise *harmony.Object, operation string) {
				if operation == "reject" {
					log.WithField("operation", operation).Debug("unhandled promise rejection")
				}
			},
		},
	})
	if err != nil {
		return nil, err
	}
	agent.Enter()

	modules := make(map[string]*harmony.SourceTextModule)
	var realm *harmony.Realm
	realm = agent.NewRealm(harmony.RealmOptions{
		ResolveImportedModule: func(referencing *harmony.SourceTextModule, specifier string) (*harmony.SourceTextModule, error) {
			path := specifier
			if referencing != nil {
				path = filepath.Join(filepath.Dir(referencing.Specifier()), specifier)
			} else {
				path = filepath.Join(baseDir, specifier)
			}
			if m, ok := modules[path]; ok {
				return m, nil
			}
			log.WithField("specifier", path).Debug("resolving module")
			src, err := afero.ReadFile(fs, path)
			if err != nil {
				return nil, fmt.Errorf("Cannot find module '%s'", specifier)
			}
			m, err := realm.CreateSourceTextModule(path, string(src))
			if err != nil {
				return nil, err
			}
			modules[path] = m
			return m, nil
		},
	})
	realm.InstallConsole(func(line string) {
		fmt.Println(line)
	})
	return realm, nil
}

func runFile(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()
	path := args[0]
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return err
	}
	realm, err := newRealm(fs, filepath.Dir(path))
	if err != nil {
		return err
	}

	if flagModule || strings.HasSuffix(path, ".mjs") {
		m, err := realm.CreateSourceTextModule(path, string(src))
		if err != nil {
			return err
		}
		if c := m.Link(); c.Abrupt() {
			return realm.HostException(c)
		}
		promise := m.Evaluate()
		if state, result, ok := harmony.PromiseState(promise); ok && state == "rejected" {
			return fmt.Errorf("%s", harmony.Inspect(result, realm))
		}
		return nil
	}

	c := realm.EvaluateScript(string(src), path)
	if err := realm.HostException(c); err != nil {
		return err
	}
	return nil
}

func runREPL(cmd *cobra.Command, args []string) error {
	realm, err := newRealm(afero.NewOsFs(), ".")
	if err != nil {
		return err
	}
	prompt := color.New(color.FgCyan).Sprint("> ")
	errPrint := color.New(color.FgRed).FprintlnFunc()
	scanner := bufio.NewScanner(os.Stdin)
	n := 0
	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ".exit" {
			return nil
		}
		n++
		c := realm.EvaluateScript(line, fmt.Sprintf("<repl:%d>", n))
		if err := realm.HostException(c); err != nil {
			errPrint(os.Stderr, err.Error())
			continue
		}
		fmt.Println(harmony.Inspect(c.ValueOrUndefined(), realm))
	}
}

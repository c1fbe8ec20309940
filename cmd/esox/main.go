/*
Esox generates a lexer and parser from a grammar file.

It reads the grammar, builds the lexical DFA and the requested parse table,
and writes the compiled bundle for the target-language emitter into the target
directory. All diagnostics go to stderr.

Usage:

	esox GRAMMAR [flags]

The flags are:

	-v, --version
		Give the current version of esox and then exit.

	-a, --algorithm NAME
		Build the parse table with the given algorithm: ll1, lr0, lr1, or
		glr. Defaults to ll1.

	-l, --language NAME
		Record the given target language in the bundle for the emitter.

	--target DIR
		Write output into DIR. Defaults to ./generated/.

	--no-lexer
		Skip lexer generation; the bundle carries only grammar and table
		data.

	--table
		Additionally write a human-readable parse-table dump named "table"
		into the target directory.

	--config FILE
		Read default values for algorithm, language, and target from the
		given TOML file before applying flags.

	--sim
		After a successful build, open an interactive console that scans and
		parses each input line with the generated tables.

	--debug
		Stream parser driver traces to stderr during --sim runs.

	-d, --direct
		Force reading --sim input directly from stdin instead of going
		through GNU readline where possible.
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/dekarrin/esox"
	"github.com/dekarrin/esox/internal/compile"
	"github.com/dekarrin/esox/internal/exerrors"
	"github.com/dekarrin/esox/internal/sim"
	"github.com/dekarrin/esox/internal/version"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitGenerationError indicates an unsuccessful program execution due to
	// a problem in the grammar or its tables.
	ExitGenerationError

	// ExitUsageError indicates an unsuccessful program execution due to bad
	// arguments or unreadable/unwritable files.
	ExitUsageError
)

var (
	returnCode    int     = ExitSuccess
	flagVersion   *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagAlgorithm *string = pflag.StringP("algorithm", "a", "ll1", "The parse table construction to use: ll1, lr0, lr1, or glr")
	flagLanguage  *string = pflag.StringP("language", "l", "", "The target language recorded in the bundle for the emitter")
	flagTarget    *string = pflag.String("target", "./generated/", "The directory to write output into")
	flagNoLexer   *bool   = pflag.Bool("no-lexer", false, "Skip lexer generation")
	flagTable     *bool   = pflag.Bool("table", false, "Also write a human-readable parse-table dump named \"table\"")
	flagConfig    *string = pflag.String("config", "", "TOML file with default values for algorithm, language, and target")
	flagSim       *bool   = pflag.Bool("sim", false, "Open the interactive sim console after a successful build")
	flagDebug     *bool   = pflag.Bool("debug", false, "Stream driver traces to stderr in the sim console")
	flagDirect    *bool   = pflag.BoolP("direct", "d", false, "Force reading sim input directly from stdin instead of readline")
)

// config mirrors the recognized keys of a --config TOML file.
type config struct {
	Algorithm string `toml:"algorithm"`
	Language  string `toml:"language"`
	Target    string `toml:"target"`
}

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("esox %s\n", version.Current)
		return
	}

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "ERROR: give exactly one grammar file; see esox --help\n")
		returnCode = ExitUsageError
		return
	}
	grammarPath := pflag.Arg(0)

	algorithm, language, target := *flagAlgorithm, *flagLanguage, *flagTarget
	if *flagConfig != "" {
		var conf config
		if _, err := toml.DecodeFile(*flagConfig, &conf); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading config: %s\n", err.Error())
			returnCode = ExitUsageError
			return
		}
		if conf.Algorithm != "" && !pflag.Lookup("algorithm").Changed {
			algorithm = conf.Algorithm
		}
		if conf.Language != "" && !pflag.Lookup("language").Changed {
			language = conf.Language
		}
		if conf.Target != "" && !pflag.Lookup("target").Changed {
			target = conf.Target
		}
	}

	alg, err := esox.ParseAlgorithm(algorithm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitUsageError
		return
	}

	src, err := os.ReadFile(grammarPath)
	if err != nil {
		exerrors.Render(os.Stderr, []*exerrors.Diagnostic{
			exerrors.Wrap(err, "cannot read grammar file %s", grammarPath),
		})
		returnCode = ExitUsageError
		return
	}

	res, diags := esox.Generate(string(src), grammarPath, esox.Options{
		Algorithm: alg,
		Language:  language,
		NoLexer:   *flagNoLexer,
	})
	if len(diags) > 0 {
		exerrors.Render(os.Stderr, diags)
		returnCode = ExitGenerationError
		return
	}

	if err := writeOutput(res, target); err != nil {
		exerrors.Render(os.Stderr, []*exerrors.Diagnostic{
			exerrors.Wrap(err, "cannot write output to %s", target),
		})
		returnCode = ExitUsageError
		return
	}

	if *flagSim {
		if err := runSim(res, alg); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitUsageError
			return
		}
	}
}

// writeOutput writes the bundle (and, with --table, the table dump) into the
// target directory. The bundle is assembled fully in memory first so a failed
// run cannot leave a truncated artifact.
func writeOutput(res *esox.Result, target string) error {
	if err := os.MkdirAll(target, 0o775); err != nil {
		return err
	}

	bundlePath := filepath.Join(target, "parser.esoxc")
	f, err := os.Create(bundlePath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := compile.Write(f, res.Bundle()); err != nil {
		return err
	}

	if *flagTable {
		tablePath := filepath.Join(target, "table")
		if err := os.WriteFile(tablePath, []byte(res.TableString()+"\n"), 0o664); err != nil {
			return err
		}
	}

	return nil
}

func runSim(res *esox.Result, alg esox.Algorithm) error {
	if res.RuleSet == nil || *flagNoLexer {
		return fmt.Errorf("cannot sim without a generated lexer (drop --no-lexer)")
	}

	console := &sim.Console{
		Tokens:      res.RuleSet.Tokens,
		Grammar:     res.Grammar,
		Alphabet:    res.Alphabet,
		DFA:         res.DFA,
		LL:          res.LLTable,
		LR:          res.LRTable,
		GLR:         alg == esox.AlgorithmGLR,
		Debug:       *flagDebug,
		ForceDirect: *flagDirect,
	}

	return console.Run()
}

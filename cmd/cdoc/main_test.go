// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cdoc/internal/errors"
	cdoctest "github.com/kraklabs/cdoc/internal/testing"
)

// runCLI runs the CLI with stdin and returns the exit code and both
// output streams.
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("CDOC_CONFIG", "")
	var out, errOut bytes.Buffer
	code := run(append([]string{"--no-color"}, args...), streams{in: strings.NewReader(stdin), out: &out, err: &errOut})
	return code, out.String(), errOut.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "", "--version")
	assert.Equal(t, errors.ExitSuccess, code)
	assert.Contains(t, out, "cdoc version dev")
	assert.Contains(t, out, "commit: unknown")
}

func TestRun_NoCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "")
	assert.Equal(t, errors.ExitInput, code)
	assert.Contains(t, errOut, "Commands:")
	assert.Contains(t, errOut, "completion")
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "", "frobnicate")
	assert.Equal(t, errors.ExitInput, code)
	assert.Contains(t, errOut, "Unknown command: frobnicate")
}

func TestRun_InvalidGlobalFlag(t *testing.T) {
	code, _, errOut := runCLI(t, "", "--bogus", "params")
	assert.Equal(t, errors.ExitInput, code)
	assert.Contains(t, errOut, "Invalid flags")
}

func TestParams(t *testing.T) {
	code, out, _ := runCLI(t, "", "params", `int add(int a, int, const char* name = "x");`)
	require.Equal(t, errors.ExitSuccess, code)
	assert.Equal(t, "a\n<anonymous>\nname\n", out)
}

func TestParams_Empty(t *testing.T) {
	for _, decl := range []string{"void f();", "void f(void);"} {
		code, out, _ := runCLI(t, "", "params", decl)
		require.Equal(t, errors.ExitSuccess, code, decl)
		assert.Empty(t, out, decl)
	}
}

func TestParams_JSON(t *testing.T) {
	code, out, _ := runCLI(t, "", "--json", "params", "std::string Widget::label(const std::map<int, std::string>& names) const;")
	require.Equal(t, errors.ExitSuccess, code)

	var got paramsJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Widget::label", got.Name)
	assert.Equal(t, "std::string", got.ReturnType)
	assert.True(t, got.HasReturn)
	assert.Equal(t, []string{"names"}, got.Params)
}

func TestParams_Stdin(t *testing.T) {
	code, out, _ := runCLI(t, "void cb(int (*handler)(int, char), size_t n);\n", "params", "-")
	require.Equal(t, errors.ExitSuccess, code)
	assert.Equal(t, "handler\nn\n", out)
}

func TestParams_ExtractionError(t *testing.T) {
	code, out, errOut := runCLI(t, "", "params", "int f(int a")
	assert.Equal(t, errors.ExitExtraction, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Declaration could not be parsed")
}

func TestParams_ExtractionErrorJSON(t *testing.T) {
	code, _, errOut := runCLI(t, "", "--json", "params", "int counter;")
	assert.Equal(t, errors.ExitExtraction, code)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(errOut), &got))
	assert.Equal(t, "not_a_function_declaration", got["code"])
	assert.EqualValues(t, errors.ExitExtraction, got["exit_code"])
}

func TestParams_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no declaration", []string{"params"}},
		{"two declarations", []string{"params", "void a();", "void b();"}},
		{"blank", []string{"params", "   "}},
		{"unknown flag", []string{"params", "--nope", "void a();"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, "", tt.args...)
			assert.Equal(t, errors.ExitInput, code)
		})
	}
}

func TestParams_Help(t *testing.T) {
	code, out, errOut := runCLI(t, "", "params", "--help")
	assert.Equal(t, errors.ExitSuccess, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Usage: cdoc params")
}

func TestDoc(t *testing.T) {
	code, out, _ := runCLI(t, "", "doc", "void resize(int width, int height);")
	require.Equal(t, errors.ExitSuccess, code)
	assert.Equal(t, "/**\n * @brief \n * \n * @param width \n * @param height \n */\n", out)
}

func TestDoc_KeepsDeclarationIndent(t *testing.T) {
	code, out, _ := runCLI(t, "", "doc", "--with-declaration", "    int area() const;")
	require.Equal(t, errors.ExitSuccess, code)
	assert.Equal(t, "/**\n     * @brief \n     * \n     * @return \n     */\n    int area() const;\n", out)
}

func TestDoc_ExplicitIndent(t *testing.T) {
	code, out, _ := runCLI(t, "", "doc", "--indent", `\t`, "int area() const;")
	require.Equal(t, errors.ExitSuccess, code)
	assert.Equal(t, "/**\n\t * @brief \n\t * \n\t * @return \n\t */\n", out)

	code, _, _ = runCLI(t, "", "doc", "--indent", "//", "int area() const;")
	assert.Equal(t, errors.ExitInput, code)
}

func TestDoc_Anonymous(t *testing.T) {
	code, out, errOut := runCLI(t, "", "doc", "void f(int, int b);")
	require.Equal(t, errors.ExitSuccess, code)
	assert.NotContains(t, out, "unnamed")
	assert.Contains(t, out, "@param b ")
	assert.Contains(t, errOut, "1 anonymous parameter(s) not documented")

	code, out, _ = runCLI(t, "", "doc", "--anonymous", "placeholder", "void f(int, int b);")
	require.Equal(t, errors.ExitSuccess, code)
	assert.Contains(t, out, "@param unnamed1 \n * @param b ")

	code, _, _ = runCLI(t, "", "doc", "--anonymous", "guess", "void f(int);")
	assert.Equal(t, errors.ExitInput, code)
}

func TestDoc_JSON(t *testing.T) {
	code, out, _ := runCLI(t, "", "--json", "doc", "bool operator==(const Point& other) const;")
	require.Equal(t, errors.ExitSuccess, code)

	var got docJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "operator==", got.Name)
	assert.Equal(t, []string{"other"}, got.Params)
	assert.Contains(t, got.Comment, "@param other ")
	assert.Contains(t, got.Comment, "@return ")
	assert.Zero(t, got.Skipped)
}

func TestDoc_UsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Docgen.BriefTemplate = "@brief {name}"
	path := ConfigPath(dir)
	require.NoError(t, SaveConfig(path, cfg))

	code, out, _ := runCLI(t, "", "--config", path, "doc", "void reset();")
	require.Equal(t, errors.ExitSuccess, code)
	assert.Contains(t, out, " * @brief reset\n")
}

func TestScan_JSON(t *testing.T) {
	root := cdoctest.WriteTree(t, map[string]string{
		"src/add.cpp":       "int add(int a, char b);\nvoid other();\n",
		"src/notes.txt":     "int ignored(int x);\n",
		"include/shape.hpp": "double area(double w, double);\n",
	})

	code, out, _ := runCLI(t, "", "--json", "scan", "--mode", "simplified", "--no-cache", root)
	require.Equal(t, errors.ExitSuccess, code)

	var got struct {
		FilesScanned    int `json:"files_scanned"`
		Declarations    int `json:"declarations"`
		Documented      int `json:"documented"`
		Parameters      int `json:"parameters"`
		AnonymousParams int `json:"anonymous_params"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.FilesScanned)
	assert.Equal(t, 3, got.Declarations)
	assert.Equal(t, 3, got.Documented)
	assert.Equal(t, 4, got.Parameters)
	assert.Equal(t, 1, got.AnonymousParams)
}

func TestScan_JSONL(t *testing.T) {
	root := cdoctest.WriteTree(t, map[string]string{
		"a.cpp": "int add(int a, char b);\nvoid other();\n",
	})

	code, out, _ := runCLI(t, "", "scan", "--jsonl", "--mode", "simplified", "--no-cache", root)
	require.Equal(t, errors.ExitSuccess, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var rec struct {
		Name   string   `json:"name"`
		Params []string `json:"params"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "add", rec.Name)
	assert.Equal(t, []string{"a", "b"}, rec.Params)
}

func TestScan_Text(t *testing.T) {
	root := cdoctest.WriteTree(t, map[string]string{
		"a.cpp": "int add(int a, char b);\n",
	})

	code, out, _ := runCLI(t, "", "scan", "--comments", "--mode", "simplified", "--no-cache", root)
	require.Equal(t, errors.ExitSuccess, code)
	assert.Contains(t, out, "add(a, b)")
	assert.Contains(t, out, " * @param a ")
	assert.Contains(t, out, "Scan Summary")
}

func TestScan_Errors(t *testing.T) {
	code, _, _ := runCLI(t, "", "scan", "--no-cache", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, errors.ExitNotFound, code)

	code, _, _ = runCLI(t, "", "scan", "--mode", "regex", t.TempDir())
	assert.Equal(t, errors.ExitInput, code)

	code, _, _ = runCLI(t, "", "scan", "a", "b")
	assert.Equal(t, errors.ExitInput, code)
}

func TestScan_Cache(t *testing.T) {
	root := cdoctest.WriteTree(t, map[string]string{
		"a.cpp": "int add(int a, char b);\n",
	})
	cacheDir := filepath.Join(t.TempDir(), "cache")

	var hits []int
	for i := 0; i < 2; i++ {
		code, out, _ := runCLI(t, "", "--json", "scan", "--mode", "simplified", "--cache-dir", cacheDir, root)
		require.Equal(t, errors.ExitSuccess, code)
		var got struct {
			CacheHits int `json:"cache_hits"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		hits = append(hits, got.CacheHits)
	}
	assert.Equal(t, []int{0, 1}, hits)

	code, out, _ := runCLI(t, "", "--json", "cache", "--cache-dir", cacheDir)
	require.Equal(t, errors.ExitSuccess, code)
	assert.Contains(t, out, `"entries": 1`)

	code, _, _ = runCLI(t, "", "cache", "--clear", "--cache-dir", cacheDir)
	require.Equal(t, errors.ExitSuccess, code)

	code, out, _ = runCLI(t, "", "--json", "cache", "--cache-dir", cacheDir)
	require.Equal(t, errors.ExitSuccess, code)
	assert.Contains(t, out, `"entries": 0`)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	code, out, _ := runCLI(t, "", "init", "--dir", dir, "--mode", "simplified", "--anonymous", "placeholder")
	require.Equal(t, errors.ExitSuccess, code)
	assert.Contains(t, out, "Created")

	cfg, err := LoadConfig(ConfigPath(dir))
	require.NoError(t, err)
	assert.Equal(t, "simplified", cfg.Scan.ParserMode)
	assert.Equal(t, "placeholder", cfg.Docgen.Anonymous)
	assert.False(t, cfg.Cache.Enabled)

	code, out, _ = runCLI(t, "", "--config", ConfigPath(dir), "doc", "int f(int a);")
	require.Equal(t, errors.ExitSuccess, code)
	assert.Equal(t, "/**\n * @brief \n * \n * @param a \n * @return \n */\n", out)

	code, _, errOut := runCLI(t, "", "init", "--dir", dir)
	assert.Equal(t, errors.ExitConfig, code)
	assert.Contains(t, errOut, "already exists")

	code, _, _ = runCLI(t, "", "init", "--dir", dir, "--force", "--cache")
	require.Equal(t, errors.ExitSuccess, code)
	cfg, err = LoadConfig(ConfigPath(dir))
	require.NoError(t, err)
	assert.True(t, cfg.Cache.Enabled)
	assert.DirExists(t, filepath.Join(dir, ".cdoc", "cache"))
}

func TestInit_InvalidMode(t *testing.T) {
	code, _, _ := runCLI(t, "", "init", "--dir", t.TempDir(), "--mode", "clang")
	assert.Equal(t, errors.ExitInput, code)
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, GlobalFlags{}).Info("hidden")
	newLogger(&buf, GlobalFlags{Verbose: 1}).Info("shown.info")
	newLogger(&buf, GlobalFlags{Verbose: 1}).Debug("hidden")
	newLogger(&buf, GlobalFlags{Verbose: 2}).Debug("shown.debug")
	newLogger(&buf, GlobalFlags{Quiet: true}).Warn("hidden")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown.info")
	assert.Contains(t, buf.String(), "shown.debug")
}

func TestMain(m *testing.M) {
	// Keep commands from picking up a .cdoc.yaml from the package directory.
	if err := os.Chdir(os.TempDir()); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

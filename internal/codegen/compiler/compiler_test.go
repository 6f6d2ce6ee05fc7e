package compiler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceresdb/protogen/internal/codegen/meta"
	"github.com/ceresdb/protogen/internal/log"
)

func testOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("tonic", testOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descriptor")
	assert.Equal(t, []string{"descriptor", "protoc"}, Supported())
}

func TestUnitExt(t *testing.T) {
	d, err := New("descriptor", testOptions())
	require.NoError(t, err)
	assert.Equal(t, DescriptorExt, UnitExt(d))

	p, err := New("protoc", testOptions())
	require.NoError(t, err)
	assert.Equal(t, "", UnitExt(p))
}

func TestProtocArgs(t *testing.T) {
	opts := testOptions()
	opts.Plugins = []string{"prost", "tonic"}
	opts.PluginOpts = map[string]string{"tonic": "no_client"}
	c, err := New("protoc", opts)
	require.NoError(t, err)

	args := c.(*protocCompiler).Args([]string{"protos/order.proto", "protos/payment.v1.proto"}, "protos", "out")
	assert.Equal(t, []string{
		"--proto_path=protos",
		"--prost_out=out",
		"--tonic_out=out",
		"--tonic_opt=no_client",
		"protos/order.proto",
		"protos/payment.v1.proto",
	}, args)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake protoc is a shell script")
	}
	path := filepath.Join(t.TempDir(), "protoc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestProtocCompile_PassesFileListVerbatim(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	t.Setenv("FAKE_PROTOC_ARGS", argsFile)

	opts := testOptions()
	opts.Protoc = writeScript(t, `printf '%s\n' "$@" > "$FAKE_PROTOC_ARGS"`+"\n")
	opts.Plugins = []string{"prost"}
	c, err := New("protoc", opts)
	require.NoError(t, err)

	files := []string{"protos/b.proto", "protos/a.proto"}
	require.NoError(t, c.Compile(context.Background(), files, "protos", "out"))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "--proto_path=protos\n--prost_out=out\nprotos/b.proto\nprotos/a.proto\n", string(data))
}

func TestProtocCompile_Failure(t *testing.T) {
	opts := testOptions()
	opts.Protoc = writeScript(t, "echo 'order.proto:3:1: Expected \";\".' >&2\nexit 1\n")
	opts.Plugins = []string{"prost"}
	c, err := New("protoc", opts)
	require.NoError(t, err)

	err = c.Compile(context.Background(), []string{"protos/order.proto"}, "protos", "out")
	var compErr *meta.CompilationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "protoc", compErr.Backend)
	assert.Equal(t, "order.proto:3:1: Expected \";\".\n", compErr.Diagnostics)
}

func TestProtocCompile_RawOutputInWholeLines(t *testing.T) {
	var raw bytes.Buffer
	opts := testOptions()
	opts.Raw = log.NewRaw(&raw)
	opts.Protoc = writeScript(t, "printf 'order.proto:3' >&2\nprintf ':1: bad\\n' >&2\nprintf 'no newline' >&2\nexit 1\n")
	opts.Plugins = []string{"prost"}
	c, err := New("protoc", opts)
	require.NoError(t, err)

	err = c.Compile(context.Background(), []string{"protos/order.proto"}, "protos", "out")
	require.Error(t, err)

	lines := strings.Split(strings.TrimSpace(raw.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "protoc stderr: order.proto:3:1: bad")
	assert.Contains(t, lines[1], "protoc stderr: no newline")
}

func TestProtocCompile_MissingBinary(t *testing.T) {
	opts := testOptions()
	opts.Protoc = filepath.Join(t.TempDir(), "no-such-protoc")
	opts.Plugins = []string{"prost"}
	c, err := New("protoc", opts)
	require.NoError(t, err)

	err = c.Compile(context.Background(), []string{"protos/order.proto"}, "protos", "out")
	var compErr *meta.CompilationError
	require.ErrorAs(t, err, &compErr)
}

func TestProtocCompile_NoPlugins(t *testing.T) {
	c, err := New("protoc", testOptions())
	require.NoError(t, err)
	err = c.Compile(context.Background(), []string{"protos/order.proto"}, "protos", "out")
	var compErr *meta.CompilationError
	require.ErrorAs(t, err, &compErr)
}

func writeProtos(t *testing.T, root string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		paths = append(paths, p)
	}
	return paths
}

const orderProto = `syntax = "proto3";
package shop;

message Order {
  string id = 1;
}
`

const paymentProto = `syntax = "proto3";
package shop;

import "order.proto";
import "google/protobuf/timestamp.proto";

message Payment {
  Order order = 1;
  google.protobuf.Timestamp paid_at = 2;
}

service PaymentService {
  rpc Pay(Payment) returns (Order);
}
`

func TestDescriptorCompile(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeProtos(t, root, map[string]string{
		"order.proto":      orderProto,
		"payment.v1.proto": paymentProto,
	})
	files := []string{filepath.Join(root, "order.proto"), filepath.Join(root, "payment.v1.proto")}

	c, err := New("descriptor", testOptions())
	require.NoError(t, err)
	require.NoError(t, c.Compile(context.Background(), files, root, out))

	order := readSet(t, filepath.Join(out, "order"+DescriptorExt))
	require.Len(t, order.File, 1)
	assert.Equal(t, "order.proto", order.File[0].GetName())

	payment := readSet(t, filepath.Join(out, "payment"+DescriptorExt))
	var names []string
	for _, f := range payment.File {
		names = append(names, f.GetName())
	}
	assert.Equal(t, []string{"order.proto", "google/protobuf/timestamp.proto", "payment.v1.proto"}, names)
	require.Len(t, payment.File[2].GetService(), 1)
	assert.Equal(t, "PaymentService", payment.File[2].GetService()[0].GetName())
}

func TestDescriptorCompile_NestedImport(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	writeProtos(t, root, map[string]string{
		"common/money.proto": "syntax = \"proto3\";\npackage common;\nmessage Money { int64 units = 1; }\n",
		"invoice.proto":      "syntax = \"proto3\";\nimport \"common/money.proto\";\nmessage Invoice { common.Money total = 1; }\n",
	})
	files := []string{filepath.Join(root, "common", "money.proto"), filepath.Join(root, "invoice.proto")}

	c, err := New("descriptor", testOptions())
	require.NoError(t, err)
	require.NoError(t, c.Compile(context.Background(), files, root, out))

	_, err = os.Stat(filepath.Join(out, "money"+DescriptorExt))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "invoice"+DescriptorExt))
	require.NoError(t, err)
}

func TestDescriptorCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "syntax error",
			files: map[string]string{"order.proto": "syntax = \"proto3\";\nmessage Order {\n  string id = 1\n}\n"},
			want:  "order.proto:",
		},
		{
			name:  "unresolved import",
			files: map[string]string{"order.proto": "syntax = \"proto3\";\nimport \"missing.proto\";\nmessage Order {}\n"},
			want:  "missing.proto",
		},
		{
			name: "naming conflict",
			files: map[string]string{
				"a.proto": "syntax = \"proto3\";\npackage shop;\nmessage Order {}\n",
				"b.proto": "syntax = \"proto3\";\npackage shop;\nimport \"a.proto\";\nmessage Order {}\n",
			},
			want: "Order",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			out := t.TempDir()
			files := writeProtos(t, root, tt.files)

			c, err := New("descriptor", testOptions())
			require.NoError(t, err)
			err = c.Compile(context.Background(), files, root, out)

			var compErr *meta.CompilationError
			require.ErrorAs(t, err, &compErr)
			assert.Equal(t, "descriptor", compErr.Backend)
			assert.Contains(t, compErr.Diagnostics, tt.want)
		})
	}
}

func TestDescriptorCompile_OutsideImportRoot(t *testing.T) {
	c, err := New("descriptor", testOptions())
	require.NoError(t, err)
	err = c.Compile(context.Background(), []string{filepath.Join("elsewhere", "order.proto")}, "protos", t.TempDir())
	var compErr *meta.CompilationError
	require.ErrorAs(t, err, &compErr)
}

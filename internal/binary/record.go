package binary

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/gopher-lua/ast"
	"github.com/yuin/gopher-lua/parse"
)

// Lua names used in the location record.
const (
	recordFieldPath     = "path"
	recordFieldPlatform = "platform"
	recordFieldArch     = "arch"
)

// maxRecordSize bounds how much of a record file is read.
const maxRecordSize = 64 * 1024

// identPattern is the only shape a platform or arch may have to be written
// into the record.
var identPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// WriteLocationRecord writes rec to file as a Lua chunk of plain string
// assignments, replacing any previous record. Platform and arch are written
// only when they are purely alphanumeric.
func WriteLocationRecord(file string, rec LocationRecord) error {
	if rec.Path == "" {
		return fmt.Errorf("location record path is required")
	}

	content := encodeLocationRecord(rec)

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sfdx-location-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpPath := tmp.Name()

	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(content); err != nil {
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp record: %w", err)
	}
	if err := os.Rename(tmpPath, file); err != nil {
		os.Remove(tmpPath)
		cleanupNeeded = false
		return fmt.Errorf("rename temp record: %w", err)
	}

	cleanupNeeded = false
	return nil
}

func encodeLocationRecord(rec LocationRecord) string {
	var buf bytes.Buffer

	buf.WriteString("-- sfdx location record\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(time.Now().UTC().Format(time.RFC3339))
	buf.WriteString("\n-- Rewritten on every install; do not edit.\n\n")

	writeAssignment(&buf, recordFieldPath, rec.Path)
	if identPattern.MatchString(rec.Platform) {
		writeAssignment(&buf, recordFieldPlatform, rec.Platform)
	}
	if identPattern.MatchString(rec.Arch) {
		writeAssignment(&buf, recordFieldArch, rec.Arch)
	}

	return buf.String()
}

func writeAssignment(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name)
	buf.WriteString(" = ")
	buf.WriteString(quoteLuaString(value))
	buf.WriteString("\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
// Windows paths come out with every backslash doubled.
func quoteLuaString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				// Three digits so a following digit isn't absorbed.
				fmt.Fprintf(&b, `\%03d`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ReadLocationRecord reads a record written by WriteLocationRecord.
//
// The file is parsed into a Lua syntax tree and never executed. Only
// `name = "string"` statements for path, platform and arch are accepted.
// A missing file yields ErrNotFound; anything malformed yields
// ErrInvalidRecord.
func ReadLocationRecord(file string) (*LocationRecord, error) {
	info, err := os.Stat(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, file)
		}
		return nil, fmt.Errorf("stat record: %w", err)
	}
	if info.Size() > maxRecordSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrInvalidRecord, file, info.Size())
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}

	return decodeLocationRecord(data, file)
}

func decodeLocationRecord(data []byte, name string) (*LocationRecord, error) {
	chunk, err := parse.Parse(bytes.NewReader(data), name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	fields := make(map[string]string, 3)
	for _, stmt := range chunk {
		assign, ok := stmt.(*ast.AssignStmt)
		if !ok || len(assign.Lhs) != 1 || len(assign.Rhs) != 1 {
			return nil, fmt.Errorf("%w: line %d is not a single assignment", ErrInvalidRecord, stmt.Line())
		}

		ident, ok := assign.Lhs[0].(*ast.IdentExpr)
		if !ok {
			return nil, fmt.Errorf("%w: line %d assigns to a non-name", ErrInvalidRecord, stmt.Line())
		}
		switch ident.Value {
		case recordFieldPath, recordFieldPlatform, recordFieldArch:
		default:
			return nil, fmt.Errorf("%w: unknown field %s", ErrInvalidRecord, strconv.Quote(ident.Value))
		}
		if _, dup := fields[ident.Value]; dup {
			return nil, fmt.Errorf("%w: %s assigned twice", ErrInvalidRecord, ident.Value)
		}

		str, ok := assign.Rhs[0].(*ast.StringExpr)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string literal", ErrInvalidRecord, ident.Value)
		}
		fields[ident.Value] = str.Value
	}

	rec := &LocationRecord{
		Path:     fields[recordFieldPath],
		Platform: fields[recordFieldPlatform],
		Arch:     fields[recordFieldArch],
	}
	if rec.Path == "" {
		return nil, fmt.Errorf("%w: path is missing", ErrInvalidRecord)
	}

	return rec, nil
}

package config

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	qerrors "github.com/standardbeagle/qshuf/internal/errors"
)

// parseKDL reads settings from a KDL document such as:
//
//	threads 8
//	seed 42
//	unterminated "drop"
//	buffer_size "4MB"
//	advise "sequential"
//	verify true
//
// The same nodes may also be nested inside a `shuffle { ... }` block.
func parseKDL(content string) (*fileSettings, error) {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	s := &fileSettings{}
	for _, n := range doc.Nodes {
		if nodeName(n) == "shuffle" {
			for _, cn := range n.Children {
				if err := s.assignKDL(cn); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := s.assignKDL(n); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *fileSettings) assignKDL(n *document.Node) error {
	name := nodeName(n)
	switch name {
	case "threads":
		v, ok := firstIntArg(n)
		if !ok {
			return qerrors.NewConfigError(name, argText(n), qerrors.ErrInvalidArgument)
		}
		s.Threads = &v
	case "seed":
		v, ok := firstUintArg(n)
		if !ok {
			return qerrors.NewConfigError(name, argText(n), qerrors.ErrInvalidArgument)
		}
		s.Seed = &v
	case "output":
		v, ok := firstStringArg(n)
		if !ok {
			return qerrors.NewConfigError(name, argText(n), qerrors.ErrInvalidArgument)
		}
		s.Output = &v
	case "unterminated":
		v, ok := firstStringArg(n)
		if !ok {
			return qerrors.NewConfigError(name, argText(n), qerrors.ErrInvalidArgument)
		}
		s.Unterminated = &v
	case "advise":
		v, ok := firstStringArg(n)
		if !ok {
			return qerrors.NewConfigError(name, argText(n), qerrors.ErrInvalidArgument)
		}
		s.Advise = &v
	case "buffer_size":
		if v, ok := firstIntArg(n); ok {
			s.BufferSize = &v
			return nil
		}
		str, ok := firstStringArg(n)
		if !ok {
			return qerrors.NewConfigError(name, argText(n), qerrors.ErrInvalidArgument)
		}
		v, err := ParseSize(str)
		if err != nil {
			return qerrors.NewConfigError(name, str, err)
		}
		s.BufferSize = &v
	case "verify":
		v, ok := firstBoolArg(n)
		if !ok {
			return qerrors.NewConfigError(name, argText(n), qerrors.ErrInvalidArgument)
		}
		s.Verify = &v
	default:
		return qerrors.NewConfigError("config", name, fmt.Errorf("unknown setting"))
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return v, true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

// firstUintArg accepts the full uint64 seed range: KDL integers above
// math.MaxInt64 arrive as *big.Int, and quoted decimal strings are allowed too.
func firstUintArg(n *document.Node) (uint64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case *big.Int:
		if v.Sign() < 0 || !v.IsUint64() {
			return 0, false
		}
		return v.Uint64(), true
	case string:
		u, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		return u, err == nil
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func argText(n *document.Node) string {
	if len(n.Arguments) == 0 {
		return ""
	}
	return fmt.Sprint(n.Arguments[0].Value)
}

// ParseSize handles size strings like "10MB", "500KB", "1GB"
func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	if num > math.MaxInt64/multiplier || num < math.MinInt64/multiplier {
		return 0, fmt.Errorf("size %q overflows int64", s)
	}
	return num * multiplier, nil
}

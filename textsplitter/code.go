package textsplitter

import (
	"fmt"
	"strings"

	"github.com/sevigo/docchunk/schema"
)

// codePiece is one fenced-able part of a code unit.
type codePiece struct {
	code     string
	tokens   int
	strategy string
	exceeded bool
	forced   bool
}

// splitCode cuts an oversized code unit. Declaration boundaries reported by the
// language plugin come first; groups that are still too large, or code without
// a plugin, fall back to line packing. Every budget check measures the fenced
// rendering so a part never outgrows the budget once rendered.
func (c *Chunker) splitCode(language, code string) ([]codePiece, error) {
	n, err := c.tokenizer.Count(schema.RenderCode(language, code))
	if err != nil {
		return nil, err
	}
	if n <= c.cfg.MaxTokens {
		return []codePiece{{code: code, tokens: n}}, nil
	}

	lines := strings.Split(code, "\n")
	starts := c.declarationStarts(language, code, len(lines))
	if len(starts) < 2 {
		return c.splitLines(language, lines)
	}

	groups := make([][]string, 0, len(starts))
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		groups = append(groups, lines[start:end])
	}

	var pieces []codePiece
	var cur []string
	emit := func() error {
		if len(cur) == 0 {
			return nil
		}
		text := strings.Join(cur, "\n")
		n, err := c.tokenizer.Count(schema.RenderCode(language, text))
		if err != nil {
			return err
		}
		cur = nil
		if n <= c.cfg.MaxTokens {
			pieces = append(pieces, codePiece{code: text, tokens: n, strategy: schema.SplitDeclarations})
			return nil
		}
		sub, err := c.splitLines(language, strings.Split(text, "\n"))
		if err != nil {
			return err
		}
		pieces = append(pieces, sub...)
		return nil
	}

	for _, group := range groups {
		if len(cur) > 0 {
			candidate := append(cur[:len(cur):len(cur)], group...)
			fits, err := c.fitsRendered(language, candidate)
			if err != nil {
				return nil, err
			}
			if fits {
				cur = candidate
				continue
			}
			if err := emit(); err != nil {
				return nil, err
			}
		}
		cur = group
	}
	if err := emit(); err != nil {
		return nil, err
	}
	return pieces, nil
}

// declarationStarts returns at least two normalized starts when the plugin for
// language finds usable boundaries. Parse failures are not fatal.
func (c *Chunker) declarationStarts(language, code string, lineCount int) []int {
	if c.registry == nil || language == "" {
		return nil
	}
	plugin, err := c.registry.GetParser(language)
	if err != nil {
		return nil
	}
	starts, err := plugin.DeclarationStarts(code)
	if err != nil {
		c.logger.Debug("No declaration boundaries, falling back to lines",
			"language", language, "plugin", plugin.Name(), "error", err)
		return nil
	}

	out := []int{0}
	for _, s := range starts {
		if s > out[len(out)-1] && s < lineCount {
			out = append(out, s)
		}
	}
	return out
}

// splitLines packs whole lines greedily. A line that is too large by itself is
// handled by the oversize policy.
func (c *Chunker) splitLines(language string, lines []string) ([]codePiece, error) {
	var pieces []codePiece
	var cur []string
	curTokens := 0
	flush := func() {
		if len(cur) > 0 {
			pieces = append(pieces, codePiece{code: strings.Join(cur, "\n"), tokens: curTokens, strategy: schema.SplitLines})
			cur, curTokens = nil, 0
		}
	}

	for _, line := range lines {
		candidate := append(cur[:len(cur):len(cur)], line)
		n, err := c.tokenizer.Count(schema.RenderCode(language, strings.Join(candidate, "\n")))
		if err != nil {
			return nil, err
		}
		if n <= c.cfg.MaxTokens {
			cur, curTokens = candidate, n
			continue
		}
		flush()

		n, err = c.tokenizer.Count(schema.RenderCode(language, line))
		if err != nil {
			return nil, err
		}
		if n <= c.cfg.MaxTokens {
			cur, curTokens = []string{line}, n
			continue
		}
		over, err := c.oversizedLine(language, line, n)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, over...)
	}
	flush()
	return pieces, nil
}

func (c *Chunker) oversizedLine(language, line string, tokens int) ([]codePiece, error) {
	switch c.cfg.OversizePolicy {
	case OversizeError:
		return nil, fmt.Errorf("%w: code line of %d tokens, budget %d", ErrBudgetExceeded, tokens, c.cfg.MaxTokens)
	case OversizeSplit:
		fence, err := c.tokenizer.Count(schema.RenderCode(language, ""))
		if err != nil {
			return nil, err
		}
		budget := c.cfg.MaxTokens - fence
		if budget <= 0 {
			break
		}
		windows, err := c.tokenizer.SplitAtTokenLimit(line, budget, 0)
		if err != nil {
			return nil, err
		}
		pieces := make([]codePiece, 0, len(windows))
		for _, w := range windows {
			n, err := c.tokenizer.Count(schema.RenderCode(language, w))
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, codePiece{
				code:     w,
				tokens:   n,
				strategy: schema.SplitTokens,
				forced:   true,
				exceeded: n > c.cfg.MaxTokens,
			})
		}
		c.logger.Warn("Force split oversized code line", "language", language, "tokens", tokens, "parts", len(pieces))
		return pieces, nil
	}

	c.logger.Warn("Code line exceeds token budget", "language", language, "tokens", tokens, "max_tokens", c.cfg.MaxTokens)
	return []codePiece{{code: line, tokens: tokens, strategy: schema.SplitLines, exceeded: true}}, nil
}

func (c *Chunker) fitsRendered(language string, lines []string) (bool, error) {
	n, err := c.tokenizer.Count(schema.RenderCode(language, strings.Join(lines, "\n")))
	if err != nil {
		return false, err
	}
	return n <= c.cfg.MaxTokens, nil
}

package usecase

import (
	"fmt"
	"strings"
)

// BlockType enumerates the structured content units an answer is
// composed of.
type BlockType string

const (
	BlockText          BlockType = "text"
	BlockHeading       BlockType = "heading"
	BlockList          BlockType = "list"
	BlockNumberedSteps BlockType = "numbered_steps"
	BlockCallout       BlockType = "callout"
	BlockWarning       BlockType = "warning"
	BlockTimeline      BlockType = "timeline"
)

// TimelinePhase is one phase entry of a timeline block.
type TimelinePhase struct {
	Phase       string `json:"phase"`
	Description string `json:"description"`
}

// ContentBlock is one typed unit of structured output. Which fields
// are populated depends on Type: text/heading/callout/warning carry
// Content, list carries Title+Items, numbered_steps carries
// Title+Steps, timeline carries Phases.
type ContentBlock struct {
	Type    BlockType       `json:"type"`
	Content string          `json:"content,omitempty"`
	Title   string          `json:"title,omitempty"`
	Items   []string        `json:"items,omitempty"`
	Steps   []string        `json:"steps,omitempty"`
	Phases  []TimelinePhase `json:"phases,omitempty"`
}

// FlattenBlocks renders blocks to their linear text form, used for
// logging, legacy text views, and suggestion-deduplication matching.
func FlattenBlocks(blocks []ContentBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if rendered := flattenBlock(b); rendered != "" {
			parts = append(parts, rendered)
		}
	}
	return strings.Join(parts, "\n\n")
}

func flattenBlock(b ContentBlock) string {
	switch b.Type {
	case BlockHeading:
		if b.Content == "" {
			return ""
		}
		return "## " + b.Content
	case BlockList:
		return flattenItems(b.Title, b.Items, func(i int, item string) string {
			return "- " + item
		})
	case BlockNumberedSteps:
		return flattenItems(b.Title, b.Steps, func(i int, item string) string {
			return fmt.Sprintf("%d. %s", i+1, item)
		})
	case BlockTimeline:
		lines := make([]string, 0, len(b.Phases))
		for _, p := range b.Phases {
			if p.Phase == "" && p.Description == "" {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s", p.Phase, p.Description))
		}
		return strings.Join(lines, "\n")
	default:
		// text, callout, warning render as their raw content
		return b.Content
	}
}

func flattenItems(title string, items []string, render func(int, string) string) string {
	lines := make([]string, 0, len(items)+1)
	if title != "" {
		lines = append(lines, title)
	}
	for i, item := range items {
		if item == "" {
			continue
		}
		lines = append(lines, render(i, item))
	}
	return strings.Join(lines, "\n")
}

// normalizeBlocks drops empty blocks and coerces unknown block types
// carrying content to plain text, so a slightly off-schema model
// response still renders.
func normalizeBlocks(blocks []ContentBlock) []ContentBlock {
	out := make([]ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case BlockText, BlockHeading, BlockCallout, BlockWarning:
			if strings.TrimSpace(b.Content) == "" {
				continue
			}
		case BlockList:
			if len(b.Items) == 0 {
				continue
			}
		case BlockNumberedSteps:
			if len(b.Steps) == 0 {
				continue
			}
		case BlockTimeline:
			if len(b.Phases) == 0 {
				continue
			}
		default:
			if strings.TrimSpace(b.Content) == "" {
				continue
			}
			b.Type = BlockText
		}
		out = append(out, b)
	}
	return out
}

package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mvoss/teampulse-cli/internal/domain"
)

type RenderOptions struct {
	Now time.Time
}

func Render(teamName string, aggregate domain.TeamAggregate, opts RenderOptions) string {
	return renderView(teamName, aggregate, opts, newStyles())
}

func renderView(teamName string, aggregate domain.TeamAggregate, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Team report: %s", teamName)),
		s.header.Render(fmt.Sprintf("members included: %d", aggregate.Count)),
	}

	if aggregate.Count == 0 {
		lines = append(lines, s.empty.Render("No completed sessions to aggregate."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, member := range aggregate.PerUser {
		lines = append(lines, s.section.Render(renderMember(member, opts, s)))
	}

	lines = append(lines, s.section.Render(renderAverages(aggregate.TeamAvg, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderMember(member domain.MemberResult, opts RenderOptions, s styles) string {
	parts := []string{
		s.member.Render(memberTitle(member.Name, member.Title)),
		s.detail.Render(fmt.Sprintf("completed %s", formatCompleted(member.CompletedAt, opts.Now))),
	}

	for _, key := range domain.VectorKeys {
		vec := member.Computed.Vector(key)
		if vec == nil {
			continue
		}
		parts = append(parts, vectorLine(key, vec, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderAverages(avg domain.VectorAverages, s styles) string {
	parts := []string{s.member.Render("Team average")}

	vectors := map[string][]float64{
		domain.VectorStructure:  avg.Structure,
		domain.VectorEcology:    avg.Ecology,
		domain.VectorPotentialA: avg.PotentialA,
		domain.VectorPotentialB: avg.PotentialB,
	}

	rendered := 0
	for _, key := range domain.VectorKeys {
		vec := vectors[key]
		if len(vec) == 0 {
			continue
		}
		parts = append(parts, vectorLine(key, vec, s))
		rendered++
	}

	if rendered == 0 {
		parts = append(parts, s.empty.Render("no vectors"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func vectorLine(key string, vec []float64, s styles) string {
	values := make([]string, 0, len(vec))
	for _, v := range vec {
		values = append(values, strconv.FormatFloat(v, 'f', 2, 64))
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.vectorKey.Render(fmt.Sprintf("%s:", key)),
		" ",
		s.detail.Render("["+strings.Join(values, ", ")+"]"),
	)
}

func memberTitle(name, title string) string {
	trimmed := strings.TrimSpace(name)
	if strings.TrimSpace(title) == "" {
		return trimmed
	}

	return fmt.Sprintf("%s (%s)", trimmed, strings.TrimSpace(title))
}

func formatCompleted(completedAt, now time.Time) string {
	if completedAt.IsZero() {
		return "unknown"
	}
	if now.IsZero() || completedAt.After(now) {
		return completedAt.Format("15:04 on 02 Jan 2006")
	}

	elapsed := now.Sub(completedAt)
	switch {
	case elapsed < time.Hour:
		return "less than an hour ago"
	case elapsed < 24*time.Hour:
		hours := int(elapsed.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(elapsed.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

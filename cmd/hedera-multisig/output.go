package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func renderTable(out io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}

// printMetrics renders every gathered counter as one row per label set.
func printMetrics(out io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var rows [][]string
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			rows = append(rows, []string{
				family.GetName(),
				formatLabels(metric.GetLabel()),
				formatValue(family.GetType(), metric),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i][0] != rows[j][0] {
			return rows[i][0] < rows[j][0]
		}
		return rows[i][1] < rows[j][1]
	})
	renderTable(out, []string{"Metric", "Labels", "Value"}, rows)
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, label.GetName()+"="+label.GetValue())
	}
	return strings.Join(parts, ",")
}

func formatValue(kind dto.MetricType, metric *dto.Metric) string {
	switch kind {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%g", metric.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%g", metric.GetGauge().GetValue())
	default:
		return kind.String()
	}
}

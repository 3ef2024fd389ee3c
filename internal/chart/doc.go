// Package chart draws the Yamazumi stacked bar chart with go-chart.
//
// Each category becomes one stack layer drawn at absolute height, so bar
// tops read directly as station totals in seconds. A dashed line marks the
// takt time and an annotation flags the bottleneck.
package chart

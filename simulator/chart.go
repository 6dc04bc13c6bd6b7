package simulator

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderWaitChart writes an HTML bar chart of the wait time distribution of
// rep.
func RenderWaitChart(w io.Writer, rep Report) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Hall call wait time",
			Subtitle: strconv.Itoa(rep.Delivered) + " passengers delivered in " + strconv.Itoa(rep.Ticks) + " ticks",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "ticks"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "passengers"}),
	)

	xAxis := make([]string, len(rep.WaitHistogram))
	data := make([]opts.BarData, len(rep.WaitHistogram))
	for i, n := range rep.WaitHistogram {
		xAxis[i] = strconv.Itoa(i)
		data[i] = opts.BarData{Value: n}
	}
	bar.SetXAxis(xAxis).AddSeries("wait", data)
	return bar.Render(w)
}

package visualization

import "github.com/jonathan/winlab-analyzer/internal/types"

// ROI dataset labels.
const (
	InvestmentDatasetLabel = "Cumulative Investment ($)"
	ReturnDatasetLabel     = "Cumulative Return ($)"
	NetROIDatasetLabel     = "Net ROI ($)"
)

var (
	roiLabels     = []string{"Month 1", "Month 2", "Month 3", "Month 6", "Month 9", "Month 12"}
	roiInvestment = []int{5000, 8000, 10000, 15000, 18000, 20000}
	roiReturns    = []int{0, 2000, 7000, 22000, 40000, 65000}
)

// ROIProjection returns the fixed twelve month projection. The ROI section
// text is not read.
func ROIProjection() types.ChartData {
	investment := append([]int(nil), roiInvestment...)
	returns := append([]int(nil), roiReturns...)
	net := make([]int, len(investment))
	for i := range investment {
		net[i] = returns[i] - investment[i]
	}

	return types.ChartData{
		Labels: append([]string(nil), roiLabels...),
		Datasets: []types.Dataset{
			{
				Label:           InvestmentDatasetLabel,
				Data:            investment,
				BorderColor:     "rgba(255, 99, 132, 1)",
				BackgroundColor: "rgba(255, 99, 132, 0.1)",
				Fill:            true,
			},
			{
				Label:           ReturnDatasetLabel,
				Data:            returns,
				BorderColor:     "rgba(54, 162, 235, 1)",
				BackgroundColor: "rgba(54, 162, 235, 0.1)",
				Fill:            true,
			},
			{
				Label:           NetROIDatasetLabel,
				Data:            net,
				BorderColor:     "rgba(75, 192, 192, 1)",
				BackgroundColor: "rgba(75, 192, 192, 0.1)",
				Fill:            true,
			},
		},
	}
}

package optimization

import (
	"context"
	"math"

	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/montanaflynn/stats"
)

// Reference model figures used when no live data backs them
const (
	staticModelAccuracy   = 88
	staticModelConfidence = 92
)

func staticSeasonalIndices() []domain.SeasonalIndex {
	return []domain.SeasonalIndex{
		{Quarter: "Q1", Index: 95},
		{Quarter: "Q2", Index: 105},
		{Quarter: "Q3", Index: 110},
		{Quarter: "Q4", Index: 120},
	}
}

func staticMarketIndicators() []domain.MarketIndicator {
	return []domain.MarketIndicator{
		{Name: "consumer_demand", Value: 102},
		{Name: "supply_availability", Value: 97},
		{Name: "price_volatility", Value: 104},
	}
}

func disabledDemand() domain.DemandAnalyticsReport {
	return domain.DemandAnalyticsReport{
		SeasonalIndices:  []domain.SeasonalIndex{},
		MarketIndicators: []domain.MarketIndicator{},
	}
}

// analyzeDemand emits the reference figures. In live mode the model
// confidence block is aggregated over the recorded predictions.
func analyzeDemand(ctx context.Context, predictions []*domain.DemandPrediction, live bool) (domain.DemandAnalyticsReport, error) {
	if err := ctx.Err(); err != nil {
		return disabledDemand(), err
	}

	report := domain.DemandAnalyticsReport{
		Enabled:          true,
		SeasonalIndices:  staticSeasonalIndices(),
		MarketIndicators: staticMarketIndicators(),
		ModelConfidence: domain.ModelConfidence{
			Accuracy:   staticModelAccuracy,
			Confidence: staticModelConfidence,
		},
	}
	if !live {
		return report, nil
	}

	report.Live = true
	report.ModelConfidence.Predictions = uint64(len(predictions))
	if len(predictions) == 0 {
		return report, nil
	}

	demand := make(stats.Float64Data, 0, len(predictions))
	confidence := make(stats.Float64Data, 0, len(predictions))
	accuracy := make(stats.Float64Data, 0, len(predictions))
	for _, p := range predictions {
		demand = append(demand, float64(p.PredictedDemand))
		confidence = append(confidence, float64(p.ConfidenceLevel))
		accuracy = append(accuracy, float64(p.HistoricalAccuracy))
	}

	meanDemand, err := stats.Mean(demand)
	if err != nil {
		return report, err
	}
	stdDev, err := stats.StandardDeviation(demand)
	if err != nil {
		return report, err
	}
	meanConfidence, err := stats.Mean(confidence)
	if err != nil {
		return report, err
	}
	meanAccuracy, err := stats.Mean(accuracy)
	if err != nil {
		return report, err
	}

	report.ModelConfidence.MeanDemand = round2(meanDemand)
	report.ModelConfidence.DemandStdDev = round2(stdDev)
	report.ModelConfidence.MeanConfidence = round2(meanConfidence)
	report.ModelConfidence.Confidence = uint64(math.Floor(meanConfidence))
	report.ModelConfidence.Accuracy = uint64(math.Floor(meanAccuracy))

	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

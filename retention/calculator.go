// Package retention computes how much previously recorded AI-authored code
// still exists, signature for signature, in a live codebase.
package retention

// Metrics is the result of matching a local scan against the stored
// signature set of a workspace.
type Metrics struct {
	TotalLocalLines         int     `json:"totalLocalLines"`
	AiGeneratedLinesCount   int     `json:"aiGeneratedLinesCount"`
	RetainedCount           int     `json:"retainedCount"`
	RemovedCount            int     `json:"removedCount"`
	AiGeneratedLinesPercent float64 `json:"aiGeneratedLinesPercent"`
	RetainedPercent         float64 `json:"retainedPercent"`
	RemovedPercent          float64 `json:"removedPercent"`
	HumanLines              int     `json:"humanLines"`
	PercentAi               float64 `json:"percentAi"`
	PercentHuman            float64 `json:"percentHuman"`
}

// Calculate applies the multiset counting policy: every stored signature
// counts toward aiGeneratedLinesCount (duplicates included), and every local
// line that matches the deduplicated remote set counts as retained. Retention
// is measured per observed local line, so a signature recorded once but
// present on several local lines is counted several times; removedCount is
// clamped at zero for exactly that case. Percentages divide by zero as 0.
func Calculate(localSignatures, remoteSignatures []string) Metrics {
	remoteSet := make(map[string]struct{}, len(remoteSignatures))
	for _, sig := range remoteSignatures {
		remoteSet[sig] = struct{}{}
	}

	totalLocal := len(localSignatures)
	aiGenerated := len(remoteSignatures)

	retained := 0
	for _, sig := range localSignatures {
		if _, ok := remoteSet[sig]; ok {
			retained++
		}
	}

	removed := aiGenerated - retained
	if removed < 0 {
		removed = 0
	}

	humanLines := totalLocal - retained

	return Metrics{
		TotalLocalLines:         totalLocal,
		AiGeneratedLinesCount:   aiGenerated,
		RetainedCount:           retained,
		RemovedCount:            removed,
		AiGeneratedLinesPercent: percent(aiGenerated, totalLocal),
		RetainedPercent:         percent(retained, aiGenerated),
		RemovedPercent:          percent(removed, aiGenerated),
		HumanLines:              humanLines,
		PercentAi:               percent(retained, totalLocal),
		PercentHuman:            percent(humanLines, totalLocal),
	}
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

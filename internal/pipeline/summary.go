package pipeline

import "fmt"

// ScoreBuckets are the labels of the score distribution histogram, in
// ascending order.
var ScoreBuckets = []string{"0-19", "20-39", "40-59", "60-79", "80-100"}

// Summary aggregates the terminal status of every topic in a run.
type Summary struct {
	TotalTopics       int            `json:"total_topics"`
	Accepted          int            `json:"accepted"`
	RejectedDuplicate int            `json:"rejected_duplicate"`
	RejectedStructure int            `json:"rejected_structure"`
	Failed            int            `json:"failed"`
	ScoreDistribution map[string]int `json:"score_distribution"`
	AverageScore      float64        `json:"average_score"`
}

// Summarize folds per-topic results into the run summary. Every topic
// appears in exactly one status counter.
func Summarize(results []Result) Summary {
	s := Summary{
		TotalTopics:       len(results),
		ScoreDistribution: make(map[string]int, len(ScoreBuckets)),
	}
	for _, b := range ScoreBuckets {
		s.ScoreDistribution[b] = 0
	}

	scored := 0
	totalScore := 0
	for _, r := range results {
		switch r.Status {
		case StatusAccepted:
			s.Accepted++
		case StatusRejectedDuplicate:
			s.RejectedDuplicate++
		case StatusRejectedStructure:
			s.RejectedStructure++
		default:
			s.Failed++
		}

		if r.Score != nil {
			s.ScoreDistribution[bucketFor(r.Score.Total)]++
			totalScore += r.Score.Total
			scored++
		}
	}

	if scored > 0 {
		s.AverageScore = float64(totalScore) / float64(scored)
	}
	return s
}

func bucketFor(score int) string {
	switch {
	case score < 20:
		return ScoreBuckets[0]
	case score < 40:
		return ScoreBuckets[1]
	case score < 60:
		return ScoreBuckets[2]
	case score < 80:
		return ScoreBuckets[3]
	default:
		return ScoreBuckets[4]
	}
}

// String renders a one-line human summary.
func (s Summary) String() string {
	return fmt.Sprintf("%d topics: %d accepted, %d duplicate, %d structure-rejected, %d failed",
		s.TotalTopics, s.Accepted, s.RejectedDuplicate, s.RejectedStructure, s.Failed)
}

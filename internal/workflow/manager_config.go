package workflow

import (
	"nropster/internal/config"
	"nropster/internal/queue"
)

// ConfigureStages registers the stage handlers the lanes will run.
func (m *Manager) ConfigureStages(set StageSet) {
	signal := m.handoff == config.HandoffSignal

	var lanes []*laneState
	if set.Fetcher != nil {
		lanes = append(lanes, &laneState{
			kind: queue.LaneFetch,
			name: "fetch",
			stage: pipelineStage{
				name:             "fetch",
				handler:          set.Fetcher,
				startStatus:      queue.StatusToFetch,
				processingStatus: queue.StatusFetching,
				doneStatus:       queue.StatusFetched,
			},
			paced:    true,
			notifies: signal,
		})
	}
	if set.Transcoder != nil {
		lanes = append(lanes, &laneState{
			kind: queue.LaneTranscode,
			name: "transcode",
			stage: pipelineStage{
				name:             "transcode",
				handler:          set.Transcoder,
				startStatus:      queue.StatusFetched,
				processingStatus: queue.StatusTranscoding,
				doneStatus:       queue.StatusDone,
			},
			signalled: signal,
		})
	}

	m.mu.Lock()
	m.lanes = lanes
	m.mu.Unlock()
}

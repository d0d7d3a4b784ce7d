package ui

import "sync"

// LaunchRecord captures one Launch call for inspection.
type LaunchRecord struct {
	Kind        LaunchKind
	Args        Args
	RequestCode int
}

// RecordingLauncher is a Launcher that records every call.
type RecordingLauncher struct {
	mu            sync.Mutex
	progressCalls int
	launches      []LaunchRecord
}

// NewRecordingLauncher creates an empty recording launcher.
func NewRecordingLauncher() *RecordingLauncher {
	return &RecordingLauncher{}
}

func (l *RecordingLauncher) ShowProgress() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progressCalls++
}

func (l *RecordingLauncher) Launch(kind LaunchKind, args Args, requestCode int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches = append(l.launches, LaunchRecord{Kind: kind, Args: args, RequestCode: requestCode})
}

// ProgressCalls returns how many times the preparing indicator was shown.
func (l *RecordingLauncher) ProgressCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.progressCalls
}

// Launches returns a copy of all recorded launches.
func (l *RecordingLauncher) Launches() []LaunchRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LaunchRecord, len(l.launches))
	copy(out, l.launches)
	return out
}

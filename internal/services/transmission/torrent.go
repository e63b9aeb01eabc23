package transmission

// Torrent status codes reported by torrent-get.
const (
	StatusStopped      = 0
	StatusCheckWait    = 1
	StatusCheck        = 2
	StatusDownloadWait = 3
	StatusDownload     = 4
	StatusSeedWait     = 5
	StatusSeed         = 6
)

// TorrentFields is the fixed field set requested by Torrents.
var TorrentFields = []string{"id", "name", "percentDone", "status", "rateDownload", "rateUpload", "magnetLink"}

// Torrent is one task returned by torrent-get.
type Torrent struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PercentDone  float64 `json:"percentDone"`
	Status       int     `json:"status"`
	RateDownload int64   `json:"rateDownload"`
	RateUpload   int64   `json:"rateUpload"`
	MagnetLink   string  `json:"magnetLink"`
}

// Stopped reports whether the task is paused or finished and idle.
func (t Torrent) Stopped() bool {
	return t.Status == StatusStopped
}

// StatusLabel returns a human readable status name.
func StatusLabel(status int) string {
	switch status {
	case StatusStopped:
		return "stopped"
	case StatusCheckWait:
		return "check-wait"
	case StatusCheck:
		return "checking"
	case StatusDownloadWait:
		return "download-wait"
	case StatusDownload:
		return "downloading"
	case StatusSeedWait:
		return "seed-wait"
	case StatusSeed:
		return "seeding"
	default:
		return "unknown"
	}
}

// Session describes the daemon as reported by session-get.
type Session struct {
	Version           string `json:"version"`
	RPCVersion        int    `json:"rpc-version"`
	DownloadDirectory string `json:"download-dir"`
}

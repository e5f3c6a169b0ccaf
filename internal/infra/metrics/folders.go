package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(folderOpsTotal) }

var folderOpsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "folder_operations_total",
		Help: "Folder organizer operations by type.",
	},
	[]string{"op"}, // 'create', 'rename', 'visibility', 'reorder', 'list'
)

func IncFolderOp(op string) {
	folderOpsTotal.WithLabelValues(norm(op)).Inc()
}

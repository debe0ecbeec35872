package disk

import "syscall"

// Usage describes the filesystem holding a path
type Usage struct {
	TotalBytes  int64
	FreeBytes   int64
	UsedPercent float64
}

// GetUsage returns disk usage for the filesystem containing path
func GetUsage(path string) (Usage, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return Usage{}, err
	}

	total := int64(stat.Blocks) * int64(stat.Bsize)
	free := int64(stat.Bavail) * int64(stat.Bsize)
	used := total - free

	u := Usage{TotalBytes: total, FreeBytes: free}
	if total > 0 {
		u.UsedPercent = float64(used) / float64(total) * 100.0
	}
	return u, nil
}

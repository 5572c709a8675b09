package scanner

import "golang.org/x/sys/unix"

// FreeBytes reports the free space on the filesystem holding dir, or -1 when
// the query fails. Purely informational; policy decisions never depend on it.
func FreeBytes(dir string) int64 {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return -1
	}
	return int64(st.Bavail) * int64(st.Bsize)
}

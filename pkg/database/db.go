package database

// PreferenceStore 定义每个音轨的用户偏好存储接口
type PreferenceStore interface {
	TrackOffset(trackKey string) (int64, bool, error) // 读取用户偏移，没有记录时 ok 为 false
	SetTrackOffset(trackKey string, offsetMs int64) error
	DeleteTrackOffset(trackKey string) error
	Close() error // 关闭数据库连接
}

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MusicDir        string        `json:"music_dir"`        // 默认扫描的音乐目录
	DataDir         string        `json:"data_dir"`         // SQLite数据库文件存放目录
	DBFileName      string        `json:"db_file_name"`     // SQLite数据库文件名
	DBPath          string        `json:"-"`                // 完整的数据库文件路径
	TickInterval    time.Duration `json:"tick_interval"`    // 轮询播放时钟的间隔
	ReloadDebounce  time.Duration `json:"reload_debounce"`  // 歌词文件变化后延迟多久重新加载
	JitterTolerance time.Duration `json:"jitter_tolerance"` // 无跳转时忽略的时钟回退量
	FFprobePath     string        `json:"ffprobe_path"`     // ffprobe 可执行文件路径
	NeteaseAPI      string        `json:"netease_api"`      // 网易云音乐 API 地址
	HTTPTimeout     time.Duration `json:"http_timeout"`     // HTTP 请求超时
	FetchOnline     bool          `json:"fetch_online"`     // 本地没有歌词时是否在线获取
	ConvertT2S      bool          `json:"convert_t2s"`      // 歌词繁体转简体
	ContextLines    int           `json:"context_lines"`    // 当前行前后显示的行数
}

const (
	musicDir   = "."
	dbFileName = "lrcplayer.db"
	ffprobe    = "ffprobe"
	neteaseAPI = "http://music.163.com"

	tickInterval    = 50 * time.Millisecond
	reloadDebounce  = 300 * time.Millisecond
	jitterTolerance = 150 * time.Millisecond
	httpTimeout     = 10 * time.Second

	contextLines = 2
)

// LoadConfig 从环境变量或默认值加载配置
func LoadConfig(logger *log.Logger) (*Config, error) {
	// 尝试加载 .env 文件
	_ = godotenv.Load()

	cfg := &Config{
		MusicDir:        os.Getenv("MUSIC_DIR"),
		DataDir:         os.Getenv("DATA_DIR"),
		DBFileName:      os.Getenv("DB_FILE_NAME"),
		TickInterval:    parseDurationOrDefault(logger, os.Getenv("TICK_INTERVAL"), tickInterval),
		ReloadDebounce:  parseDurationOrDefault(logger, os.Getenv("RELOAD_DEBOUNCE"), reloadDebounce),
		JitterTolerance: parseDurationOrDefault(logger, os.Getenv("JITTER_TOLERANCE"), jitterTolerance),
		FFprobePath:     os.Getenv("FFPROBE_PATH"),
		NeteaseAPI:      os.Getenv("NETEASE_API"),
		HTTPTimeout:     parseDurationOrDefault(logger, os.Getenv("HTTP_TIMEOUT"), httpTimeout),
		FetchOnline:     parseBoolOrDefault(logger, os.Getenv("FETCH_ONLINE"), false),
		ConvertT2S:      parseBoolOrDefault(logger, os.Getenv("CONVERT_T2S"), false),
		ContextLines:    parseIntOrDefault(logger, os.Getenv("CONTEXT_LINES"), contextLines),
	}

	// 设置默认值
	if cfg.MusicDir == "" {
		cfg.MusicDir = musicDir
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.DBFileName == "" {
		cfg.DBFileName = dbFileName
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = ffprobe
	}
	if cfg.NeteaseAPI == "" {
		cfg.NeteaseAPI = neteaseAPI
	}
	if cfg.TickInterval <= 0 {
		logger.Printf("Warning: TICK_INTERVAL must be positive, using default '%v'.", tickInterval)
		cfg.TickInterval = tickInterval
	}
	if cfg.ContextLines < 0 {
		cfg.ContextLines = 0
	}
	cfg.DBPath = filepath.Join(cfg.DataDir, cfg.DBFileName)
	// 确认目录存在
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}
	logger.Printf("Configuration loaded: MusicDir=%s, DataDir=%s, DBPath=%s, TickInterval=%v",
		cfg.MusicDir, cfg.DataDir, cfg.DBPath, cfg.TickInterval)
	return cfg, nil
}

// defaultDataDir 用户配置目录下的 lrcplayer，取不到时退回当前目录
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "lrcplayer")
	}
	return ".lrcplayer"
}

func parseDurationOrDefault(logger *log.Logger, s string, defaultValue time.Duration) time.Duration {
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Printf("Warning: Could not parse duration '%s', using default '%v'. Error: %v", s, defaultValue, err)
		return defaultValue
	}
	return d
}

func parseBoolOrDefault(logger *log.Logger, s string, defaultValue bool) bool {
	if s == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		logger.Printf("Warning: Could not parse bool '%s', using default '%v'. Error: %v", s, defaultValue, err)
		return defaultValue
	}
	return b
}

func parseIntOrDefault(logger *log.Logger, s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		logger.Printf("Warning: Could not parse int '%s', using default '%v'. Error: %v", s, defaultValue, err)
		return defaultValue
	}
	return n
}

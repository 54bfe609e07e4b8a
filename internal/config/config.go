package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Addressbook/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Addressbook"
	AppID             = "com.github.tartampluch.go-addressbook"
	KeyringService    = "com.github.tartampluch.go-addressbook"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "settings.yaml"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI
// -----------------------------------------------------------------------------

const (
	CLIDescription = "A small contact book with phones and birthdays."
	VersionFormat  = "%s version %s (commit %s, built %s, %s/%s)"
	Prompt         = "Enter a command: "
)

// -----------------------------------------------------------------------------
// Command Verbs
// -----------------------------------------------------------------------------

const (
	CmdHello        = "hello"
	CmdHelp         = "help"
	CmdAdd          = "add"
	CmdChange       = "change"
	CmdPhone        = "phone"
	CmdShow         = "show"
	CmdAll          = "all"
	CmdDelete       = "delete"
	CmdRemovePhone  = "remove-phone"
	CmdAddBirthday  = "add-birthday"
	CmdShowBirthday = "show-birthday"
	CmdBirthdays    = "birthdays"
	CmdVCard        = "vcard"
	CmdImport       = "import"
	CmdImportURL    = "import-url"
	CmdExit         = "exit"
	CmdClose        = "close"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWelcome         = "welcome"
	TKeyGoodbye         = "goodbye"
	TKeyHello           = "hello"
	TKeyHelp            = "help"
	TKeyContactAdded    = "contact_added"
	TKeyContactUpdated  = "contact_updated"
	TKeyContactDeleted  = "contact_deleted"
	TKeyPhoneUpdated    = "phone_updated"
	TKeyPhoneRemoved    = "phone_removed"
	TKeyBirthdayAdded   = "birthday_added"
	TKeyBirthdayUnset   = "birthday_not_set"
	TKeyNoBirthdays     = "no_birthdays"
	TKeyNoContacts      = "no_contacts"
	TKeyNoPhones        = "no_phones"
	TKeyImported        = "imported" // Requires Imported, Skipped
	TKeyErrPhoneFormat  = "err_phone_format"
	TKeyErrDateFormat   = "err_date_format"
	TKeyErrPhoneMissing = "err_phone_not_found"
	TKeyErrContact      = "err_contact_not_found"
	TKeyErrArgs         = "err_not_enough_args"
	TKeyErrUnknownCmd   = "err_unknown_command"
	TKeyErrImport       = "err_import"
	TKeyErrImportOff    = "err_import_unavailable"
	TKeyErrInternal     = "err_internal"
	TKeyEvtSummaryAge   = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBirth = "event_summary_birth" // Requires Name (For age 0)
)

// SupportedLanguages defines the list of available reply languages (ISO 639-1).
var SupportedLanguages = []string{"en", "uk"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort         = "18080"
	DefaultLanguage     = "en"
	UpcomingWindowDays  = 7
	PhoneDigits         = 10
	BirthdayUnsetMarker = "not set"
	PhoneSeparator      = "; "
	UIDNamespace        = "go-addressbook-v1"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Addressbook//Feed//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "goaddressbook"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// DateFormatBirthday is the only accepted layout for user supplied dates.
	DateFormatBirthday = "02.01.2006"

	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"

	FormatUID = "%s-%d@%s"

	MinPort = 1
	MaxPort = 65535
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	AddrSeparator       = ":"

	// FeedCheckInterval is how often the feed refresher looks for a new day.
	FeedCheckInterval = time.Minute
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType  = "Content-Type"
	HeaderCacheControl = "Cache-Control"
	HeaderETag         = "ETag"
	HeaderRetryAfter   = "Retry-After"
	HeaderAllow        = "Allow"
	HeaderXContentType = "X-Content-Type-Options"
	HeaderUserAgent    = "User-Agent"
	HeaderAccept       = "Accept"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	MimeVCard           = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	CacheControlPrivate = "private, no-cache"

	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Environment Overrides
// -----------------------------------------------------------------------------

const (
	EnvLanguage    = "ADDRESSBOOK_LANG"
	EnvPort        = "ADDRESSBOOK_PORT"
	EnvCardDAVURL  = "ADDRESSBOOK_CARDDAV_URL"
	EnvCardDAVUser = "ADDRESSBOOK_CARDDAV_USER"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrPhoneFormat     = "phone must contain exactly 10 digits"
	ErrDateFormat      = "invalid date format, use DD.MM.YYYY"
	ErrPhoneNotFound   = "phone not found"
	ErrRecordNotFound  = "contact not found"
	ErrNotEnoughArgs   = "not enough arguments"
	ErrUnknownCommand  = "unknown command"
	ErrImportDisabled  = "import is not configured"
	ErrCardNoName      = "vCard has no name"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "feed port is required"
	ErrPortNumber      = "feed port must be a number"
	ErrPortRange       = "feed port must be between 1 and 65535"
	ErrLanguage        = "unsupported language"
	ErrReminder        = "reminder must be an ISO-8601 duration such as -P1D"
	ErrSettingsRead    = "failed to read settings file"
	ErrSettingsParse   = "failed to parse settings file"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrFetchRequest    = "failed to create request"
	ErrFetchNetwork    = "network error during fetch"
	ErrFetchStatus     = "address book server returned unexpected status"
	ErrURLEmpty        = "import URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrVCardEncode     = "failed to encode vCard"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrFeedRender      = "failed to render birthday feed"
	ErrInputRead       = "failed to read input"
	ErrCredentialFetch = "failed to read password from keyring"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"

	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgAppStarting   = "Starting application"
	MsgAppStop       = "Application stopped gracefully"
	MsgCommand       = "Command handled"
	MsgCommandFailed = "Command failed"
	MsgImportStarted = "Import started"
	MsgImportDone    = "Import finished"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedPhone  = "Skipping phone that is not 10 digits"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgFeedRendered  = "Birthday feed rendered"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Feed cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgSettingsUsed  = "Settings loaded"
	MsgFetchStatus   = "Address book server returned error status"
	MsgFetchStarted  = "Downloading vCards"
	MsgRefreshStart  = "Feed refresher started"
	MsgFeedRolled    = "Feed re-rendered for a new day"
	MsgCredLookup    = "Looking up CardDAV password"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyUser      = "user"
	LogKeyVerb      = "verb"
	LogKeyArgs      = "arg_count"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCards     = "cards"
	LogKeyImported  = "imported"
	LogKeySkipped   = "skipped"
	LogKeyEvents    = "events"
	LogKeySizeBytes = "size_bytes"
	LogKeyLength    = "content_length"
	LogKeyInterval  = "interval"
	LogKeyDate      = "date"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompBot      = "bot"
	CompEngine   = "engine"
	CompImporter = "importer"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompSettings = "settings"
)

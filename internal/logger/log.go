package logger

import (
	"bytes"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// bodyLimit caps how much of a request or response body lands in one entry
	bodyLimit = 4 * 1024
	// request log type
	requestType = "request"

	truncatedMarker = "...TRUNCATED"
)

// logRecord for Request Log
type logRecord struct {
	RequestID       string // AwsRequestID when running on Lambda, otherwise generated
	Timestamp       int64
	Duration        int64
	HTTPStatusCode  int
	ErrorStackTrace string
	HTTPMethod      string
	RequestPath     string
	ContentType     string
	RequestBody     string
	ResponseBody    string
	RetryNum        string // X-Slack-Retry-Num; retries are processed like any other delivery
	RetryReason     string
}

func (record *logRecord) fields() []zap.Field {
	fields := []zap.Field{
		zap.String("type", requestType),
		zap.String("request_id", record.RequestID),
		zap.String("method", record.HTTPMethod),
		zap.String("path", record.RequestPath),
		zap.String("content_type", record.ContentType),
		zap.Int("status", record.HTTPStatusCode),
		zap.Int64("duration_ms", record.Duration),
		zap.String("request_body", truncate(record.RequestBody)),
		zap.String("response_body", truncate(record.ResponseBody)),
	}
	if record.RetryNum != "" {
		fields = append(fields,
			zap.String("retry_num", record.RetryNum),
			zap.String("retry_reason", record.RetryReason))
	}
	if record.ErrorStackTrace != "" {
		fields = append(fields, zap.String("stack", record.ErrorStackTrace))
	}
	return fields
}

// GinLogMiddleware support request log using gin middleware
func GinLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var logRecord *logRecord
		// overwrite the gin.Context.Writer to log response body
		respLogWriter := &respLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = respLogWriter

		defer func() {
			// finally print request log even panic
			switch {
			case logRecord.HTTPStatusCode >= http.StatusInternalServerError:
				GetLogger().Error("request", logRecord.fields()...)
			case logRecord.RetryNum != "":
				GetLogger().Info("request", logRecord.fields()...)
			default:
				GetLogger().Debug("request", logRecord.fields()...)
			}
		}()

		defer func() {
			if r := recover(); r != nil {
				logRecord.HTTPStatusCode = http.StatusInternalServerError
				logRecord.ErrorStackTrace = string(debug.Stack())
				// throw the panic to the later middlewares
				panic(r)
			}
		}()

		logRecord = initLogRecord(c)

		if lc, ok := lambdacontext.FromContext(c.Request.Context()); ok {
			logRecord.RequestID = lc.AwsRequestID
		} else {
			logRecord.RequestID = uuid.NewString()
		}

		c.Next()

		// if response normally, fill in remain fields
		logRecord.HTTPStatusCode = c.Writer.Status()
		logRecord.Duration = time.Now().UnixNano()/1e6 - logRecord.Timestamp
		if respLogWriter.body != nil {
			logRecord.ResponseBody = respLogWriter.body.String()
		}
	}
}

func truncate(s string) string {
	if len(s) <= bodyLimit {
		return s
	}
	return s[:bodyLimit] + truncatedMarker
}

type respLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w respLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w respLogWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func initLogRecord(ctx *gin.Context) *logRecord {
	requestBodyBytes, err := io.ReadAll(ctx.Request.Body)
	// reattach request body for later use; signature checks need the exact bytes
	var body io.Reader = bytes.NewReader(requestBodyBytes)
	if err != nil {
		GetLogger().Warn("failed to read request body for logging", zap.Error(err))
		// later readers see the same failure
		body = io.MultiReader(body, errReader{err})
	}
	ctx.Request.Body = io.NopCloser(body)

	return &logRecord{
		Timestamp:   time.Now().UnixNano() / 1e6,
		HTTPMethod:  ctx.Request.Method,
		RequestPath: ctx.Request.URL.Path,
		ContentType: ctx.GetHeader("Content-Type"),
		RequestBody: string(requestBodyBytes),
		RetryNum:    ctx.GetHeader("X-Slack-Retry-Num"),
		RetryReason: ctx.GetHeader("X-Slack-Retry-Reason"),
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

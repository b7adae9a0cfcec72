package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimePDF         = "application/pdf"
	MimeImage       = "image/"
	MimeVideo       = "video/"
	MimeText        = "text/plain"
	MimeWord        = "application/msword"
	MimeWordX       = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeOctetStream = "application/octet-stream"
	MimeZip         = "application/zip" // docx/pptx/xlsx sniff as zip containers
)

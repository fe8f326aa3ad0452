package snsclient

type Option func(*SNSClient)

func Endpoint(endpoint string) Option {
	return func(c *SNSClient) {
		c.endpoint = endpoint
	}
}

func StaticCredentials(accessKey, secretKey string) Option {
	return func(c *SNSClient) {
		c.accessKey = accessKey
		c.secretKey = secretKey
	}
}

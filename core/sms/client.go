package sms

import (
	"encoding/json"
	"fmt"

	"AuthQ/config"

	"github.com/aliyun/alibaba-cloud-sdk-go/services/dysmsapi"
)

// Client 封装阿里云短信网关
type Client struct {
	api      *dysmsapi.Client
	signName string
}

// NewClient 构建短信网关客户端
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.SMSAccessKeyID == "" || cfg.SMSAccessKeySecret == "" {
		return nil, fmt.Errorf("sms access key not configured")
	}

	api, err := dysmsapi.NewClientWithAccessKey(cfg.SMSRegion, cfg.SMSAccessKeyID, cfg.SMSAccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create sms client: %w", err)
	}

	return &Client{api: api, signName: cfg.SMSSignName}, nil
}

// Send 下发一条模板短信，返回网关应答。
// signName 为空时回落到配置的默认签名。
func (c *Client) Send(phone, signName, templateCode string, templateParams map[string]string) (*dysmsapi.SendSmsResponse, error) {
	if signName == "" {
		signName = c.signName
	}

	req := dysmsapi.CreateSendSmsRequest()
	req.Scheme = "https"
	req.PhoneNumbers = phone
	req.SignName = signName
	req.TemplateCode = templateCode
	if len(templateParams) > 0 {
		raw, err := json.Marshal(templateParams)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal template params: %w", err)
		}
		req.TemplateParam = string(raw)
	}

	resp, err := c.api.SendSms(req)
	if err != nil {
		return nil, fmt.Errorf("sms gateway request failed: %w", err)
	}
	if resp.Code != "OK" {
		return resp, fmt.Errorf("sms gateway rejected request: %s (%s)", resp.Code, resp.Message)
	}
	return resp, nil
}

package notification

import (
	"context"
	"fmt"
	"strings"

	"backend/internal/identity"
	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/moderation"

	"go.uber.org/zap"
)

// RoleLookup 角色查询协作接口，审批服务天然满足
type RoleLookup interface {
	GetRole(ctx context.Context, id string) (*moderation.Role, error)
}

// CollectionNotifier 审批通知编排器
// 负责把引擎的通知载荷翻译为具体收件人与邮件内容：
// 作者通知发给集合作者，审批人通知按动作携带的目标角色展开到用户
type CollectionNotifier struct {
	identities *identity.Service
	resolver   moderation.EligibilityResolver
	roles      RoleLookup
	notifier   Notifier
	baseURL    string
	logger     *zap.Logger
}

// NewCollectionNotifier 创建审批通知编排器
func NewCollectionNotifier(identities *identity.Service, resolver moderation.EligibilityResolver, roles RoleLookup, notifier Notifier, baseURL string) *CollectionNotifier {
	return &CollectionNotifier{
		identities: identities,
		resolver:   resolver,
		roles:      roles,
		notifier:   notifier,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.Get(),
	}
}

var actionLabels = map[moderation.ActionKind]string{
	moderation.ActionApproved:    "已通过",
	moderation.ActionRejected:    "已驳回",
	moderation.ActionResubmitted: "已重新提交",
	moderation.ActionCancelled:   "已取消",
}

func actionLabel(kind moderation.ActionKind) string {
	if label, ok := actionLabels[kind]; ok {
		return label
	}
	return string(kind)
}

// NotifyCollectionAuthor 通知集合作者：整批动作合并为一封邮件
func (c *CollectionNotifier) NotifyCollectionAuthor(ctx context.Context, n *moderation.AuthorNotification) error {
	author, err := c.identities.GetUser(ctx, n.Collection.AuthorID)
	if err != nil {
		return fmt.Errorf("查询集合作者失败: %w", err)
	}
	if author.Email == "" {
		c.logger.Debug("集合作者未配置邮箱，跳过通知", zap.String("authorId", author.ID))
		return nil
	}

	subject := fmt.Sprintf("审批集合「%s」有 %d 条请求%s", n.Collection.Name, len(n.Requests), actionLabel(n.Action))
	return c.deliver(ctx, []string{author.Email}, subject, c.renderBody(n.Collection, n.Requests, n.Action, ""))
}

// NotifyCollectionModerators 通知下一批审批人
// 收件人 = 动作目标角色展开出的用户集合；角色缺失时静默跳过
func (c *CollectionNotifier) NotifyCollectionModerators(ctx context.Context, n *moderation.ModeratorNotification) error {
	if n.Action == nil || n.Action.ToRoleID == "" {
		c.logger.Debug("动作未携带目标角色，无审批人可通知",
			zap.String("collectionId", n.Collection.ID))
		return nil
	}

	role, err := c.roles.GetRole(ctx, n.Action.ToRoleID)
	if err != nil {
		return fmt.Errorf("查询目标角色失败: %w", err)
	}
	userIDs, err := c.resolver.UsersEligibleFor(ctx, role)
	if err != nil {
		return fmt.Errorf("解析审批人失败: %w", err)
	}
	emails, err := c.identities.ListEmails(ctx, userIDs)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		c.logger.Debug("目标角色下没有可通知的审批人",
			zap.String("roleId", role.ID),
			zap.String("collectionId", n.Collection.ID))
		return nil
	}

	subject := fmt.Sprintf("审批集合「%s」有 %d 条请求等待「%s」审批", n.Collection.Name, len(n.Requests), role.Name)
	return c.deliver(ctx, emails, subject, c.renderBody(n.Collection, n.Requests, n.Action.Action, role.Name))
}

// renderBody 渲染纯文本邮件正文
func (c *CollectionNotifier) renderBody(collection *moderation.ModerationCollection, requests []*moderation.ModerationRequest, kind moderation.ActionKind, roleName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "审批集合：%s\n", collection.Name)
	fmt.Fprintf(&b, "动作：%s\n", actionLabel(kind))
	if roleName != "" {
		fmt.Fprintf(&b, "待审批角色：%s\n", roleName)
	}
	b.WriteString("涉及内容：\n")
	for _, req := range requests {
		fmt.Fprintf(&b, "  - 版本 %s（语言 %s）\n", req.VersionID, req.Language)
	}
	if c.baseURL != "" {
		fmt.Fprintf(&b, "\n查看详情：%s/collections/%s\n", c.baseURL, collection.ID)
	}
	return b.String()
}

// deliver 逐个投递，任一失败返回首个错误（其余仍尝试发送）
func (c *CollectionNotifier) deliver(ctx context.Context, recipients []string, subject, body string) error {
	var firstErr error
	for _, to := range recipients {
		err := c.notifier.Send(ctx, &Notification{
			Type:    "email",
			To:      to,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			metrics.NotificationsTotal.WithLabelValues("email", "failed").Inc()
			c.logger.Warn("通知邮件投递失败", zap.String("to", to), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.NotificationsTotal.WithLabelValues("email", "ok").Inc()
	}
	return firstErr
}

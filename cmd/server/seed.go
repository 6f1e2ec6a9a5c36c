package main

import (
	"fmt"

	"gymhub/internal/database"
	"gymhub/internal/models"
	"gymhub/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建默认场馆
	if err := createDefaultGym(db); err != nil {
		return fmt.Errorf("创建默认场馆失败: %v", err)
	}

	// 2. 创建默认管理员用户
	if err := createDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultGym 创建默认场馆
func createDefaultGym(db *gorm.DB) error {
	var count int64
	db.Model(&models.Gym{}).Where("code = ?", "default").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认场馆已存在，跳过创建")
		return nil
	}

	gym := &models.Gym{
		Name:   "默认场馆",
		Code:   "default",
		Status: models.GymStatusActive,
	}

	if err := db.Create(gym).Error; err != nil {
		return err
	}

	logger.GetLogger().Info("默认场馆创建成功")
	return nil
}

// createDefaultAdmin 创建默认管理员用户
func createDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("管理员用户已存在，跳过创建")
		return nil
	}

	// 获取默认场馆
	var gym models.Gym
	if err := db.Where("code = ?", "default").First(&gym).Error; err != nil {
		return fmt.Errorf("获取默认场馆失败: %v", err)
	}

	// 创建用户
	user := &models.User{
		GymID:           gym.ID,
		Username:        "admin",
		Email:           "admin@example.com",
		Name:            "系统管理员",
		Status:          models.UserStatusActive,
		IsPlatformAdmin: true,
	}

	// 设置密码
	if err := user.SetPassword("Admin@123"); err != nil {
		return fmt.Errorf("设置密码失败: %v", err)
	}

	if err := db.Create(user).Error; err != nil {
		return err
	}

	logger.GetLogger().Infof("默认管理员创建成功 - 用户名: admin, 密码: Admin@123")
	return nil
}
